// Package database はMongoDB接続とインデックス管理を提供する。
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// コレクション名。エンティティ型名を小文字化したもの。
const (
	InfectadoCollection = "infectado"
	UsuarioCollection   = "usuario"
)

// Connect はMongoDBクライアントを生成して接続する。
// timeoutはクライアント全体の操作タイムアウトとして設定する。
// 返されたクライアントはプロセス内で共有し、終了時にDisconnectすること。
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	return client, nil
}

// HealthChecker はMongoDBへの疎通確認を行う。
type HealthChecker struct {
	client *mongo.Client
}

// NewHealthChecker はHealthCheckerを生成する。
func NewHealthChecker(client *mongo.Client) *HealthChecker {
	return &HealthChecker{client: client}
}

// Ping はプライマリへの疎通を確認する。
func (h *HealthChecker) Ping(ctx context.Context) error {
	if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

// IndexSpec はコレクションに作成するインデックスを表す。
type IndexSpec struct {
	Collection string
	Model      mongo.IndexModel
}

// IndexSpecs はアプリケーションが必要とするインデックス定義を返す。
// loginのインデックスは一意制約を持たない。重複登録の排除はサービス層で行う。
// localizacaoには2dsphereを張らない。範囲外の座標も保存できる必要がある。
func IndexSpecs() []IndexSpec {
	return []IndexSpec{
		{
			Collection: UsuarioCollection,
			Model: mongo.IndexModel{
				Keys:    bson.D{{Key: "login", Value: 1}},
				Options: options.Index().SetName("login_1"),
			},
		},
	}
}

// EnsureIndexes はIndexSpecsのインデックスを作成する。既存の同一定義は何もしない。
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, spec := range IndexSpecs() {
		if _, err := db.Collection(spec.Collection).Indexes().CreateOne(ctx, spec.Model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", spec.Collection, err)
		}
	}
	return nil
}

// MaskURI は接続URIの認証情報をマスクする。ログ出力用。
func MaskURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return "***"
	}
	if u.User == nil {
		return u.String()
	}
	u.User = nil
	return strings.Replace(u.String(), "://", "://***@", 1)
}
