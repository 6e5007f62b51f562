package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	mu   sync.Mutex
	docs []interface{}
}

func (f *fakeCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, docs...)
	return &mongo.InsertManyResult{}, nil
}

func TestSetupProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup("production", &buf)
	log.Debug("hidden")
	log.Info("order created", "order_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"order created"`)
	assert.Contains(t, out, `"order_id":7`)
}

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	tagged := L.With("request_id", "abc")
	ctx := InjectLogger(context.Background(), tagged)
	assert.Same(t, tagged, WithCtx(ctx))
}

func TestMongoHandlerFlushesOnClose(t *testing.T) {
	col := &fakeCollection{}
	h := newMongoHandler(col, slog.LevelInfo)

	var buf bytes.Buffer
	log := Setup("local", &buf, h)
	log.With("request_id", "rid-1").WithGroup("payment").Info("callback", "trade_state", "SUCCESS")
	log.Debug("below mongo level")
	h.Close()

	col.mu.Lock()
	defer col.mu.Unlock()
	require.Len(t, col.docs, 1)

	entry := col.docs[0].(Entry)
	assert.Equal(t, "callback", entry.Msg)
	assert.Equal(t, "rid-1", entry.RequestID)
	assert.Equal(t, "SUCCESS", entry.Attrs["payment.trade_state"])
	assert.Contains(t, buf.String(), "below mongo level")
}
