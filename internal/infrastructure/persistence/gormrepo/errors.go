package gormrepo

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/licoreria/pkg/errors"
)

// isDuplicateError 判断是否为唯一索引冲突
// MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// PostgreSQL 23505: unique_violation
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// isConflictError 判断是否为可重试的并发冲突
// MySQL 1213: 死锁; 1205: 锁等待超时
// PostgreSQL 40P01: deadlock_detected; 40001: serialization_failure; 55P03: lock_not_available
func isConflictError(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40P01", "40001", "55P03":
			return true
		}
	}
	return false
}

// isCheckViolation 库存CHECK约束被触发(兜底,正常情况下条件更新已拦截)
// MySQL 3819; PostgreSQL 23514
func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 3819
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514"
	}
	return false
}

// wrapDBError 将数据库错误转换为业务错误
// 已经是AppError的直接返回;死锁等转换为ErrConcurrencyConflict
func wrapDBError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isConflictError(err) {
		return apperrors.WithDetail(apperrors.ErrConcurrencyConflict, apperrors.ErrConcurrencyConflict.Message, err)
	}
	return apperrors.WithDetail(apperrors.ErrDatabaseError, message, err)
}

// checkUpdated 区分"记录不存在"和"值没有变化"
// MySQL默认只统计实际被修改的行，原值写回时RowsAffected为0
func checkUpdated(db *gorm.DB, result *gorm.DB, model interface{}, id uint, notFound error) error {
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return wrapDBError(err, "查询记录失败")
	}
	if count == 0 {
		return notFound
	}
	return nil
}
