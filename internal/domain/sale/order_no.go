package sale

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// GenerateOrderNo 生成销售单号
// 格式:VTA + 时间戳(秒) + 6位随机数,如 VTA1699248000123456
func GenerateOrderNo() string {
	return fmt.Sprintf("VTA%d%06d", time.Now().Unix(), rand.IntN(1000000))
}
