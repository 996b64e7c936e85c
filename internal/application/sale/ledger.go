// Package sale 销售台账应用服务
//
// Ledger是销售单、销售明细和商品库存之间一致性的唯一维护者：
// 每个修改操作都在一个事务里完成 明细写入、库存增减、库存流水、合计重算，
// 要么全部生效，要么全部不生效。
//
// 加锁顺序固定为 先销售单行，再按商品ID升序锁商品行，
// 因此台账操作之间不会形成死锁环。数据库仍可能报告死锁或序列化失败，
// 这类错误被归类为ErrConcurrencyConflict并按ledger.max_retries有限重试。
package sale

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/xiebiao/licoreria/internal/domain/customer"
	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/domain/product"
	"github.com/xiebiao/licoreria/internal/domain/sale"
	"github.com/xiebiao/licoreria/internal/domain/shared"
	"github.com/xiebiao/licoreria/internal/domain/user"
	"github.com/xiebiao/licoreria/pkg/metrics"
	"github.com/xiebiao/licoreria/pkg/tracing"
)

const tracerName = "licoreria/ledger"

// Options 台账参数
type Options struct {
	MaxRetries        int           // 并发冲突最多重试次数，0表示不重试
	RetryInterval     time.Duration // 首次重试间隔，之后指数增长
	LowStockThreshold int           // 销售后库存小于等于该值时发布低库存事件，0表示关闭
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		MaxRetries:    3,
		RetryInterval: 20 * time.Millisecond,
	}
}

// Repositories 台账依赖的仓储
type Repositories struct {
	Orders    sale.OrderRepository
	LineItems sale.LineItemRepository
	Products  product.Repository
	Customers customer.Repository
	Users     user.Repository
	Movements inventory.Repository
}

// Ledger 销售台账
type Ledger struct {
	tx        shared.TxManager
	orders    sale.OrderRepository
	items     sale.LineItemRepository
	products  product.Repository
	customers customer.Repository
	users     user.Repository
	movements inventory.Repository
	publisher shared.EventPublisher
	logger    *slog.Logger
	opts      Options
}

// NewLedger 创建销售台账
func NewLedger(
	txManager shared.TxManager,
	repos Repositories,
	publisher shared.EventPublisher,
	logger *slog.Logger,
	opts Options,
) *Ledger {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultOptions().RetryInterval
	}
	return &Ledger{
		tx:        txManager,
		orders:    repos.Orders,
		items:     repos.LineItems,
		products:  repos.Products,
		customers: repos.Customers,
		users:     repos.Users,
		movements: repos.Movements,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

// outbox 事务内收集的事件，提交后才发布
type outbox struct {
	events []shared.Event
}

func (o *outbox) add(eventType string, payload any) {
	o.events = append(o.events, shared.NewEvent(eventType, payload))
}

// execute 在事务中执行fn，冲突时重试，提交后发布事件
// 每次重试都是全新的事务和outbox
func (l *Ledger) execute(ctx context.Context, op string, fn func(ctx context.Context, out *outbox) error) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Ledger."+op)
	start := time.Now()
	defer func() {
		metrics.ObserveLedgerOperation(op, err, time.Since(start).Seconds())
		if errors.Is(err, sale.ErrInsufficientStock) {
			metrics.InsufficientStockTotal.Inc()
		}
		tracing.EndSpan(span, err)
	}()

	var out *outbox
	attempt := func() (struct{}, error) {
		out = &outbox{}
		txErr := l.tx.Transaction(ctx, func(ctx context.Context) error {
			return fn(ctx, out)
		})
		if txErr == nil {
			return struct{}{}, nil
		}
		if errors.Is(txErr, sale.ErrConcurrencyConflict) {
			return struct{}{}, txErr
		}
		return struct{}{}, backoff.Permanent(txErr)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.opts.RetryInterval
	b.MaxInterval = 20 * l.opts.RetryInterval

	_, err = backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(l.opts.MaxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			metrics.LedgerConflictRetriesTotal.WithLabelValues(op).Inc()
			l.logger.WarnContext(ctx, "台账并发冲突，准备重试",
				slog.String("operation", op),
				slog.Duration("wait", wait),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		// 最后一次尝试的Permanent错误不会被Retry解包
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		return err
	}

	l.publish(ctx, out.events)
	return nil
}

// publish 发布失败只记录日志，业务已经提交
func (l *Ledger) publish(ctx context.Context, events []shared.Event) {
	if len(events) == 0 || l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, events...); err != nil {
		l.logger.WarnContext(ctx, "台账事件发布失败", slog.Int("events", len(events)), slog.Any("error", err))
	}
}

// lockProducts 按ID升序锁定商品行
func (l *Ledger) lockProducts(ctx context.Context, ids ...uint) (map[uint]*product.Product, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	locked := make(map[uint]*product.Product, len(sorted))
	for _, id := range sorted {
		p, err := l.products.LockByID(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = p
	}
	return locked, nil
}

// takeStock 扣减已锁定商品的库存并记录SALE流水
// p.Stock随之更新，便于同一事务内后续判断
func (l *Ledger) takeStock(ctx context.Context, out *outbox, p *product.Product, quantity int, orderID, lineItemID uint) error {
	if !p.HasStock(quantity) {
		return sale.NewInsufficientStockError(p.ID, quantity, p.Stock)
	}
	if err := l.products.UpdateStock(ctx, p.ID, -quantity); err != nil {
		if errors.Is(err, product.ErrInsufficientStock) {
			return sale.NewInsufficientStockError(p.ID, quantity, p.Stock)
		}
		return err
	}
	if err := l.movements.Create(ctx, inventory.NewSaleMovement(p.ID, quantity, p.Stock, orderID, lineItemID)); err != nil {
		return err
	}
	p.Stock -= quantity

	if inventory.IsLow(p.Stock, l.opts.LowStockThreshold) {
		out.add(inventory.EventStockLow, inventory.StockLowEvent{
			ProductID: p.ID,
			Code:      p.Code,
			Name:      p.Name,
			Stock:     p.Stock,
			Threshold: l.opts.LowStockThreshold,
		})
	}
	return nil
}

// restoreStock 归还库存并记录RESTORE流水
func (l *Ledger) restoreStock(ctx context.Context, p *product.Product, quantity int, orderID, lineItemID uint, reason string) error {
	if err := l.products.UpdateStock(ctx, p.ID, quantity); err != nil {
		return err
	}
	if err := l.movements.Create(ctx, inventory.NewRestoreMovement(p.ID, quantity, p.Stock, orderID, lineItemID, reason)); err != nil {
		return err
	}
	p.Stock += quantity
	return nil
}

// refreshTotal 按有效明细重算合计并以乐观锁写回
func (l *Ledger) refreshTotal(ctx context.Context, order *sale.Order) (int64, error) {
	items, err := l.items.ListByOrder(ctx, order.ID)
	if err != nil {
		return 0, err
	}
	total := sale.RecomputeTotal(items)
	if err := l.orders.UpdateTotal(ctx, order.ID, total, order.Version); err != nil {
		return 0, err
	}
	order.Total = total
	order.Version++
	return total, nil
}
