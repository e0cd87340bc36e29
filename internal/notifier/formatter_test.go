package notifier

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/differ"
	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const target = "https://shop.example.com/new"

var at = time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

func TestMessageFormatter_CountsChange(t *testing.T) {
	prior, err := models.NewCountSignal(at, models.Metrics{{Name: "men", Value: 10}, {Name: "women", Value: 40}, {Name: "kids", Value: 3}})
	require.NoError(t, err)
	current, err := models.NewCountSignal(at, models.Metrics{{Name: "men", Value: 10}, {Name: "women", Value: 42}, {Name: "sale", Value: 5}})
	require.NoError(t, err)

	diff := differ.NewSignalDiffer().Diff(&prior, current)
	msg := NewMessageFormatter(target).Change(current, diff)

	assert.Contains(t, msg, "URL: "+target)
	assert.Contains(t, msg, "- men: 10 (+0)")
	assert.Contains(t, msg, "- women: 42 (+2)")
	assert.Contains(t, msg, "- sale: 5 (new)")
	assert.Contains(t, msg, "- kids: gone (was 3)")
}

func TestMessageFormatter_ItemsChange(t *testing.T) {
	sigs := make([]string, 10)
	for i := range sigs {
		sigs[i] = "Item " + string(rune('A'+i)) + " | Rs. 1 | https://shop.example.com/p/" + string(rune('a'+i))
	}
	prior, err := models.NewItemSignal(at, 10, sigs[1:])
	require.NoError(t, err)
	current, err := models.NewItemSignal(at, 12, sigs)
	require.NoError(t, err)

	diff := differ.NewSignalDiffer().Diff(&prior, current)
	msg := NewMessageFormatter(target).Change(current, diff)

	assert.Contains(t, msg, "Products found now: 12 (+2)")
	assert.Contains(t, msg, "New in top list: 1")
	assert.Contains(t, msg, "- "+sigs[0])
	assert.Contains(t, msg, "- "+sigs[7])
	assert.NotContains(t, msg, sigs[8])
	assert.False(t, strings.HasSuffix(msg, "\n"))
}

func TestMessageFormatter_StartupAndError(t *testing.T) {
	mf := NewMessageFormatter(target)

	startup := mf.Startup("items", time.Minute, 30*time.Second)
	assert.Contains(t, startup, "watcher started")
	assert.Contains(t, startup, target)
	assert.Contains(t, startup, "1m0s ± 30s")

	msg := mf.Error(errors.New("fetch failed"))
	assert.Contains(t, msg, "Watcher error: fetch failed")
	assert.NotContains(t, msg, "Cause:")
}

func TestMessageFormatter_ErrorNamesRootCause(t *testing.T) {
	mf := NewMessageFormatter(target)
	root := &net.DNSError{Err: "no such host", Name: "shop.example.com"}
	err := common.NewFetchError(target, common.FetchStageRender, common.WrapError(root, "navigate"))

	msg := mf.Error(err)

	assert.Contains(t, msg, "Watcher error: ")
	assert.Contains(t, msg, "Cause: *net.DNSError: lookup shop.example.com: no such host")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	out := truncateText(strings.Repeat("é", 20), 10)
	assert.Equal(t, 10, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, truncatedSuffix))
}
