package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/litebittech/cex/services/dlob/internal/metrics"
)

// traceIDHeader is the response header carrying the per-request trace ID,
// matching the field name the teacher's orderbook.TraceIDFromContext logs
// latency checkpoints under.
const traceIDHeader = "X-Trace-Id"

// Router builds the gin engine per spec.md §6: the /dlob prefix-stripping
// rule, the middleware stack (ginzap logging+recovery, otelgin tracing,
// cors, metrics, per-IP rate limiting), and every endpoint in the table.
func (d *Deps) Router() *gin.Engine {
	r := gin.New()

	r.Use(dlobPrefixStrip(r))
	r.Use(requestID())
	r.Use(ginzap.Ginzap(d.ZapLog, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(d.ZapLog, true))
	r.Use(otelgin.Middleware("dlob"))
	r.Use(cors.Default())
	r.Use(metricsMiddleware())
	r.Use(d.rateLimitMiddleware())

	r.GET("/health", d.handleHealth)
	r.GET("/", d.handleHealth)
	r.GET("/startup", d.handleStartup)

	orders := r.Group("/orders")
	{
		orders.GET("/json/raw", d.handleOrdersJSONRaw)
		orders.GET("/json", d.handleOrdersJSON)
		orders.GET("/idl", d.handleOrdersIDL)
		orders.GET("/idlWithSlot", d.handleOrdersIDLWithSlot)
	}

	r.GET("/topMakers", d.handleTopMakers)
	r.GET("/l2", d.handleL2)
	r.GET("/batchL2", d.handleBatchL2)
	r.GET("/l3", d.handleL3)

	return r
}

// dlobPrefixStrip implements spec.md §6's load-balancer path rule: a
// leading /dlob is removed before routing; an empty result becomes /.
// gin has already matched the original path when middleware runs, so the
// rewritten request is routed again through r.HandleContext.
func dlobPrefixStrip(r *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/dlob") {
			p = strings.TrimPrefix(p, "/dlob")
			if p == "" {
				p = "/"
			}
			c.Request.URL.Path = p
			r.HandleContext(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestID generates a per-request trace ID, the same fallback
// orderbook.TraceIDFromContext applies when the incoming context carries
// none: a fresh uuid.New() whenever the caller didn't supply one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(traceIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("trace_id", id)
		c.Writer.Header().Set(traceIDHeader, id)
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(path, c.Request.Method, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// rateLimitMiddleware enforces RATE_LIMIT_CALLS_PER_SECOND per client IP,
// bypassed entirely when ALLOW_LOAD_TEST is set (spec.md §6).
func (d *Deps) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.AllowLoadTest || d.RateLimiter == nil {
			c.Next()
			return
		}
		if !d.RateLimiter.Allow(c.ClientIP()) {
			metrics.RateLimitRejections.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
