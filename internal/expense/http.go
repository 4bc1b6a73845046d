package expense

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// レスポンスメッセージ
const (
	messageInvalid   = "不正なデータ"
	messageSaved     = "保存成功"
	messageSaveError = "保存失敗"
	messageLoadError = "取得失敗"
)

// timeStamp として受け付ける文字列の形式
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// createRequest は POST / のリクエストボディです。
// expend と timeStamp は数値・文字列のどちらでも受け付けます。
type createRequest struct {
	User      string `json:"user"`
	TimeStamp any    `json:"timeStamp"`
	Mode      string `json:"mode"`
	Expend    any    `json:"expend"`
	Type      string `json:"type"`
	Remark    string `json:"remark"`
}

func (req *createRequest) toRecord() (*Record, error) {
	ts, ok := parseTimeStamp(req.TimeStamp)
	if !ok {
		return nil, ErrInvalidRecord
	}
	record := &Record{
		User:      req.User,
		Mode:      req.Mode,
		Expend:    parseExpend(req.Expend),
		Type:      req.Type,
		Remark:    req.Remark,
		TimeStamp: ts,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// CreateHandler は POST / のハンドラーを返します。
func CreateHandler(store Store, logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, messageInvalid)
			return
		}

		record, err := req.toRecord()
		if err != nil {
			c.String(http.StatusBadRequest, messageInvalid)
			return
		}

		if err := store.Insert(c.Request.Context(), record); err != nil {
			logger.Printf("保存エラー：%v user=%s mode=%s type=%s", err, record.User, record.Mode, record.Type)
			c.String(http.StatusInternalServerError, messageSaveError)
			return
		}
		c.String(http.StatusOK, messageSaved)
	}
}

// RecentHandler は GET /relay のハンドラーを返します。
// user クエリを指定するとそのユーザーの記録だけを返します。
func RecentHandler(store Store, logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		records, err := store.Recent(c.Request.Context(), c.Query("user"), RecentLimit)
		if err != nil {
			logger.Printf("取得エラー：%v", err)
			c.String(http.StatusInternalServerError, messageLoadError)
			return
		}
		if records == nil {
			records = []Record{}
		}
		c.JSON(http.StatusOK, gin.H{"expendDataObjectArray": records})
	}
}

// parseExpend は金額を数値に変換します。変換できない値は 0 になります。
func parseExpend(v any) float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// parseTimeStamp は日時文字列またはエポックミリ秒を time.Time に変換します。
func parseTimeStamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
