package clock_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-household/clock"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/rpcutil"
)

func TestClockCalendar(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 0, Total: 8}, 4)
	assert.Equal(t, int32(0), c.T)
	assert.True(t, c.IsYearStart())
	assert.False(t, c.Done())

	c.Advance()
	assert.True(t, c.IsAdjustPeriod())
	assert.False(t, c.IsYearStart())
	for c.T < 4 {
		c.Advance()
	}
	assert.True(t, c.IsYearStart())
	y, s := c.YearAndSub()
	assert.Equal(t, int32(1), y)
	assert.Equal(t, int32(0), s)
	for !c.Done() {
		c.Advance()
	}
	assert.Equal(t, int32(8), c.T)
	assert.Equal(t, "t=8 (Y2.0)", c.String())

	c.Init()
	assert.Equal(t, int32(0), c.T)
}

func TestClockAnnualDefault(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 3, Total: 2}, 0)
	assert.Equal(t, int32(1), c.ANNUAL)
	assert.True(t, c.IsAdjustPeriod())
	assert.Equal(t, int32(5), c.END_STEP)
}

func TestNowRPC(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 0, Total: 10}, 4)
	c.Advance()
	c.Advance()
	mux := http.NewServeMux()
	c.Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := rpcutil.NewClient[clock.NowRequest, clock.NowResponse](srv.Client(), srv.URL, clock.NowProcedure)
	res, err := client.CallUnary(context.Background(), connect.NewRequest(&clock.NowRequest{}))
	require.NoError(t, err)
	assert.Equal(t, int32(2), res.Msg.T)
	assert.Equal(t, int32(0), res.Msg.Year)
	assert.Equal(t, int32(2), res.Msg.Sub)
	assert.Equal(t, int32(10), res.Msg.End)
}
