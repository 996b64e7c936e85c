package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleAdmin  Role = "admin"    // 管理员:维护商品目录、调整库存、注册用户
	RoleSeller Role = "vendedor" // 销售员:只能操作销售
)

// Valid 角色是否合法
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller
}

// User 用户实体（聚合根）
// 密码为bcrypt哈希值,实体不提供任何暴露明文的方法
type User struct {
	ID        uint
	Username  string
	Password  string // bcrypt哈希值
	Role      Role
	Premium   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, hashedPassword string, role Role, premium bool) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Password:  hashedPassword,
		Role:      role,
		Premium:   premium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
