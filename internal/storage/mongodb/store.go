// Package mongodb は MongoDB に資格情報と支出記録を保存します。
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yourusername/expense-tracker/internal/expense"
	"github.com/yourusername/expense-tracker/internal/users"
)

const (
	usersCollection    = "users"
	expensesCollection = "expenses"
)

// Store は users.Store と expense.Store を MongoDB で実装します。
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	expenses *mongo.Collection
}

var (
	_ users.Store   = (*Store)(nil)
	_ expense.Store = (*Store)(nil)
)

type userDocument struct {
	Username     string `bson:"username"`
	PasswordHash string `bson:"passwordHash"`
}

type expenseDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	User      string        `bson:"user"`
	Mode      string        `bson:"mode"`
	Expend    float64       `bson:"expend"`
	Type      string        `bson:"type"`
	Remark    string        `bson:"remark"`
	TimeStamp time.Time     `bson:"timeStamp"`
}

// Connect は MongoDB クライアントを作成します。
// 接続自体は遅延するため、到達不能でもここではエラーになりません。
func Connect(uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	db := client.Database(database)
	return &Store{
		client:   client,
		users:    db.Collection(usersCollection),
		expenses: db.Collection(expensesCollection),
	}, nil
}

// Init は疎通確認とインデックス作成を行います。
// username の一意性はユニークインデックスで保証します。
func (s *Store) Init(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	if _, err := s.expenses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "timeStamp", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create expenses index: %w", err)
	}
	return nil
}

// Close は接続を閉じます。
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FindByUsername はユーザーを検索します。
func (s *Store) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &users.User{Username: doc.Username, PasswordHash: doc.PasswordHash}, nil
}

// Create はユーザーを作成します。
func (s *Store) Create(ctx context.Context, username, passwordHash string) (*users.User, error) {
	_, err := s.users.InsertOne(ctx, userDocument{Username: username, PasswordHash: passwordHash})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, users.ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &users.User{Username: username, PasswordHash: passwordHash}, nil
}

// Insert は支出記録を保存します。
func (s *Store) Insert(ctx context.Context, record *expense.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	doc := toExpenseDocument(record)
	doc.ID = bson.NewObjectID()
	if _, err := s.expenses.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	record.ID = doc.ID.Hex()
	return nil
}

// Recent は新しい順に支出記録を返します。
func (s *Store) Recent(ctx context.Context, user string, limit int) ([]expense.Record, error) {
	filter := bson.D{}
	if user != "" {
		filter = bson.D{{Key: "user", Value: user}}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timeStamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.expenses.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	var docs []expenseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}

	out := make([]expense.Record, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromExpenseDocument(doc))
	}
	return out, nil
}

func toExpenseDocument(r *expense.Record) expenseDocument {
	return expenseDocument{
		User:      r.User,
		Mode:      r.Mode,
		Expend:    r.Expend,
		Type:      r.Type,
		Remark:    r.Remark,
		TimeStamp: r.TimeStamp.UTC(),
	}
}

func fromExpenseDocument(doc expenseDocument) expense.Record {
	return expense.Record{
		ID:        doc.ID.Hex(),
		User:      doc.User,
		Mode:      doc.Mode,
		Expend:    doc.Expend,
		Type:      doc.Type,
		Remark:    doc.Remark,
		TimeStamp: doc.TimeStamp.UTC(),
	}
}
