// Package mongofake はテスト用のインメモリMongoDBコレクションを提供する。
// トップレベルフィールドの等値条件のみをサポートする。
package mongofake

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrUnsupportedFilter は演算子を含む条件が渡された場合のエラー。
var ErrUnsupportedFilter = errors.New("mongofake: only top-level equality filters are supported")

// Collection はスレッドセーフなインメモリコレクション。
// ドキュメントは挿入順に保持する。
type Collection struct {
	name string

	mu   sync.Mutex
	docs []bson.M

	// Err が設定されている場合、すべての操作はこのエラーを返す。
	Err error
}

// New は空のCollectionを生成する。
func New(name string) *Collection {
	return &Collection{name: name}
}

// Name はコレクション名を返す。
func (c *Collection) Name() string {
	return c.name
}

// Put はドキュメントをそのまま格納する。_idがない場合は採番する。
// 未知のフィールドや旧形式のデータを仕込むために使う。
func (c *Collection) Put(doc bson.M) primitive.ObjectID {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := cloneM(doc)
	oid, ok := stored["_id"].(primitive.ObjectID)
	if !ok || oid.IsZero() {
		oid = primitive.NewObjectID()
		stored["_id"] = oid
	}
	c.docs = append(c.docs, stored)
	return oid
}

// Docs は格納中のドキュメントのコピーを返す。
func (c *Collection) Docs() []bson.M {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]bson.M, 0, len(c.docs))
	for _, d := range c.docs {
		out = append(out, cloneM(d))
	}
	return out
}

// InsertOne はドキュメントを追加する。_idが未設定ならObjectIDを採番する。
func (c *Collection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	m, err := toM(document)
	if err != nil {
		return nil, err
	}
	if _, exists := m["_id"]; !exists {
		m["_id"] = primitive.NewObjectID()
	}

	c.mu.Lock()
	c.docs = append(c.docs, m)
	c.mu.Unlock()

	return &mongo.InsertOneResult{InsertedID: m["_id"]}, nil
}

// ReplaceOne は最初に一致したドキュメントを置き換える。_idは維持する。
// upsertは行わない。
func (c *Collection) ReplaceOne(_ context.Context, filter interface{}, replacement interface{}, _ ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	f, err := toFilter(filter)
	if err != nil {
		return nil, err
	}
	m, err := toM(replacement)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.docs {
		if matches(d, f) {
			m["_id"] = d["_id"]
			modified := int64(0)
			if !reflect.DeepEqual(d, m) {
				modified = 1
			}
			c.docs[i] = m
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: modified}, nil
		}
	}
	return &mongo.UpdateResult{}, nil
}

// DeleteOne は最初に一致したドキュメントを削除する。
func (c *Collection) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	f, err := toFilter(filter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.docs {
		if matches(d, f) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return &mongo.DeleteResult{}, nil
}

// Find は一致したドキュメントを挿入順に返すカーソルを生成する。
func (c *Collection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	f, err := toFilter(filter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	docs := make([]interface{}, 0, len(c.docs))
	for _, d := range c.docs {
		if matches(d, f) {
			docs = append(docs, cloneM(d))
		}
	}
	c.mu.Unlock()

	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

// CountDocuments は一致したドキュメント数を返す。
func (c *Collection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	f, err := toFilter(filter)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for _, d := range c.docs {
		if matches(d, f) {
			n++
		}
	}
	return n, nil
}

func matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func toFilter(filter interface{}) (bson.M, error) {
	if filter == nil {
		return bson.M{}, nil
	}
	m, err := toM(filter)
	if err != nil {
		return nil, err
	}
	for k, v := range m {
		if strings.HasPrefix(k, "$") {
			return nil, ErrUnsupportedFilter
		}
		if sub, ok := v.(bson.M); ok {
			for sk := range sub {
				if strings.HasPrefix(sk, "$") {
					return nil, ErrUnsupportedFilter
				}
			}
		}
	}
	return m, nil
}

// toM はBSONの往復変換でドキュメントをbson.Mへ正規化する。
// 比較時の型（int32/int64、time.Timeとprimitive.DateTimeなど）を揃えるため。
func toM(v interface{}) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mongofake: marshal document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mongofake: unmarshal document: %w", err)
	}
	return m, nil
}

func cloneM(m bson.M) bson.M {
	c, err := toM(m)
	if err != nil {
		// bson.Mとして読めたドキュメントは必ず再エンコードできる
		panic(err)
	}
	return c
}
