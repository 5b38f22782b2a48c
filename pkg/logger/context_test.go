package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFromContext(t *testing.T) {
	carried := zap.NewExample()
	fallback := zap.NewNop()

	ctx := WithLogger(context.Background(), carried)
	assert.Same(t, carried, FromContext(ctx, fallback))
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.NotNil(t, FromContext(context.Background(), nil))
}

func TestFromEcho_PrefersEchoValue(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	l := zap.NewExample()
	c.Set("logger", l)
	assert.Same(t, l, FromEcho(c))
}
