// Package expense は支出記録の保存と取得を提供します。
package expense

import (
	"context"
	"errors"
	"time"
)

// RecentLimit は一覧取得で返す最大件数です。
const RecentLimit = 100

// ErrInvalidRecord は必須項目が欠けた記録に対して返されます。
var ErrInvalidRecord = errors.New("invalid expense record")

// Record は一件の支出記録です。
type Record struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Mode      string    `json:"mode"`
	Expend    float64   `json:"expend"`
	Type      string    `json:"type"`
	Remark    string    `json:"remark"`
	TimeStamp time.Time `json:"timeStamp"`
}

// Validate は必須項目が揃っているかを確認します。remark は任意です。
func (r *Record) Validate() error {
	if r.User == "" || r.Mode == "" || r.Type == "" || r.Expend == 0 || r.TimeStamp.IsZero() {
		return ErrInvalidRecord
	}
	return nil
}

// Store は支出記録の保存先です。
type Store interface {
	// Insert は記録を保存し、採番したIDを record.ID に設定します。
	Insert(ctx context.Context, record *Record) error
	// Recent は timeStamp の新しい順に最大 limit 件を返します。
	// user が空の場合は全ユーザーが対象です。
	Recent(ctx context.Context, user string, limit int) ([]Record, error)
}
