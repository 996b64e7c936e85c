package gormrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/xiebiao/licoreria/internal/domain/product"
	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, isDuplicateError(nil))
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'RON-01' for key 'code'"}))
	assert.True(t, isDuplicateError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isDuplicateError(&mysql.MySQLError{Number: 1213}))
}

func TestIsConflictError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql死锁", &mysql.MySQLError{Number: 1213}, true},
		{"mysql锁等待超时", &mysql.MySQLError{Number: 1205}, true},
		{"pg死锁", &pgconn.PgError{Code: "40P01"}, true},
		{"pg序列化失败", &pgconn.PgError{Code: "40001"}, true},
		{"pg唯一冲突", &pgconn.PgError{Code: "23505"}, false},
		{"普通错误", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConflictError(tt.err))
		})
	}
}

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, wrapDBError(nil, "x"))

	err := wrapDBError(&mysql.MySQLError{Number: 1213}, "更新失败")
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	err = wrapDBError(errors.New("boom"), "更新失败")
	assert.ErrorIs(t, err, apperrors.ErrDatabaseError)

	// 已经是业务错误的原样返回
	err = wrapDBError(product.ErrInsufficientStock, "更新失败")
	assert.Same(t, product.ErrInsufficientStock, err)
}
