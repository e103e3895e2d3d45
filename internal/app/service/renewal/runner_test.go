package renewal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/DallanL/nms-like-n-subscribe/pkg/config"
)

func TestRunner_RunsImmediateCycleAndStopsCleanly(t *testing.T) {
	store := newFakeStore(sub("sub-1", "1234567890.com", "rt-a", testNow.Add(time.Minute)))
	client := newFakeClient()
	engine := newTestEngine(store, client)

	cfg := &cfgpkg.Config{Renewal: cfgpkg.RenewalConfig{PollInterval: time.Hour}}
	r := NewRunner(engine, cfg, zap.NewNop().Sugar())
	r.Start()

	require.Eventually(t, func() bool {
		return client.refreshCount() == 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
}

func TestRunner_StopWithoutStartIsNoop(t *testing.T) {
	cfg := &cfgpkg.Config{Renewal: cfgpkg.RenewalConfig{PollInterval: time.Hour}}
	r := NewRunner(nil, cfg, zap.NewNop().Sugar())
	require.NoError(t, r.Stop(context.Background()))
}
