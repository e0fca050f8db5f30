package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection はGatewayが利用するMongoDBコレクション操作の部分集合。
// *mongo.Collection がこれを満たす。
type Collection interface {
	Name() string
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

var _ Collection = (*mongo.Collection)(nil)

// Filter はドキュメントの検索条件。フィールド名は永続化時の名前を使う。
type Filter = bson.M

// ByID はIDの一致条件を返す。IDがObjectIDの16進表現でない場合はfalseを返す。
func ByID(id string) (Filter, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return Filter{"_id": oid}, true
}

// ByLogin はloginの一致条件を返す。
func ByLogin(login string) Filter {
	return Filter{"login": login}
}

// OperationRecorder はストア操作の結果を記録するインターフェース。
type OperationRecorder interface {
	RecordStoreOperation(collection, operation string, err error, duration time.Duration)
}

// PersistenceError はストア操作の失敗を表す。
type PersistenceError struct {
	Op         string
	Collection string
	Err        error
}

// Error はerrorインターフェースを実装する。
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s on %s failed: %v", e.Op, e.Collection, e.Err)
}

// Unwrap は原因エラーを返す。
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError はerrがPersistenceErrorを含むかを判定する。
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Gateway は1つのコレクションに束縛された、ドキュメント型Dの永続化アクセサ。
// 各メソッドはストアへの単一操作であり、リトライもトランザクションも行わない。
type Gateway[D any] struct {
	coll     Collection
	recorder OperationRecorder
}

// NewGateway はGatewayを生成する。recorderはnilでもよい。
func NewGateway[D any](coll Collection, recorder OperationRecorder) *Gateway[D] {
	return &Gateway[D]{coll: coll, recorder: recorder}
}

// Insert はドキュメントを新規作成し、ストアが採番したIDを16進文字列で返す。
func (g *Gateway[D]) Insert(ctx context.Context, doc *D) (string, error) {
	start := time.Now()
	res, err := g.coll.InsertOne(ctx, doc)
	g.record("insert", start, err)
	if err != nil {
		return "", g.wrap("insert", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", g.wrap("insert", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	return oid.Hex(), nil
}

// Replace は指定IDのドキュメントをdocで丸ごと置き換え、一致件数（0または1）を返す。
// 一致しない場合に新規作成はしない。IDが不正な形式の場合は0を返す。
func (g *Gateway[D]) Replace(ctx context.Context, id string, doc *D) (int64, error) {
	filter, ok := ByID(id)
	if !ok {
		return 0, nil
	}

	start := time.Now()
	res, err := g.coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(false))
	g.record("replace", start, err)
	if err != nil {
		return 0, g.wrap("replace", err)
	}
	return res.MatchedCount, nil
}

// Delete は指定IDのドキュメントを削除し、削除件数（0または1）を返す。
func (g *Gateway[D]) Delete(ctx context.Context, id string) (int64, error) {
	filter, ok := ByID(id)
	if !ok {
		return 0, nil
	}

	start := time.Now()
	res, err := g.coll.DeleteOne(ctx, filter)
	g.record("delete", start, err)
	if err != nil {
		return 0, g.wrap("delete", err)
	}
	return res.DeletedCount, nil
}

// FindAll はコレクションの全ドキュメントを返す。順序はストアの既定に従う。
func (g *Gateway[D]) FindAll(ctx context.Context) ([]D, error) {
	return g.find(ctx, "find_all", Filter{})
}

// FindWhere は条件に一致するドキュメントを返す。
func (g *Gateway[D]) FindWhere(ctx context.Context, filter Filter) ([]D, error) {
	return g.find(ctx, "find_where", filter)
}

// FindByID は指定IDのドキュメントを返す。見つからない場合はnilを返す。
func (g *Gateway[D]) FindByID(ctx context.Context, id string) (*D, error) {
	filter, ok := ByID(id)
	if !ok {
		return nil, nil
	}

	docs, err := g.find(ctx, "find_by_id", filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

// CountWhere は条件に一致するドキュメント数を返す。
func (g *Gateway[D]) CountWhere(ctx context.Context, filter Filter) (int64, error) {
	start := time.Now()
	n, err := g.coll.CountDocuments(ctx, filter)
	g.record("count_where", start, err)
	if err != nil {
		return 0, g.wrap("count_where", err)
	}
	return n, nil
}

// find はカーソルを最後まで読み切ってスライスで返す。
func (g *Gateway[D]) find(ctx context.Context, op string, filter Filter) ([]D, error) {
	start := time.Now()
	cur, err := g.coll.Find(ctx, filter)
	if err != nil {
		g.record(op, start, err)
		return nil, g.wrap(op, err)
	}

	docs := make([]D, 0)
	err = cur.All(ctx, &docs)
	g.record(op, start, err)
	if err != nil {
		return nil, g.wrap(op, err)
	}
	return docs, nil
}

func (g *Gateway[D]) record(op string, start time.Time, err error) {
	if g.recorder != nil {
		g.recorder.RecordStoreOperation(g.coll.Name(), op, err, time.Since(start))
	}
}

func (g *Gateway[D]) wrap(op string, err error) error {
	return &PersistenceError{Op: op, Collection: g.coll.Name(), Err: err}
}
