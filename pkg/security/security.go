package security

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Policy CORS 白名单与限流参数，配置热更新时通过 Update 替换
type Policy struct {
	mu      sync.RWMutex
	origins map[string]bool
	limit   rate.Limit
	burst   int

	visitorsMu sync.Mutex
	visitors   map[string]*visitor
}

// visitor 包装限流器和最后活跃时间，用于定期清理
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewPolicy(allowedOrigins []string, maxRequests int, window time.Duration) *Policy {
	p := &Policy{visitors: make(map[string]*visitor)}
	p.Update(allowedOrigins, maxRequests, window)
	return p
}

func (p *Policy) Update(allowedOrigins []string, maxRequests int, window time.Duration) {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}
	limit := rate.Every(window / time.Duration(maxRequests))

	p.mu.Lock()
	p.origins = originSet
	p.limit = limit
	p.burst = maxRequests
	p.mu.Unlock()

	p.visitorsMu.Lock()
	for _, v := range p.visitors {
		v.limiter.SetLimit(limit)
		v.limiter.SetBurst(maxRequests)
	}
	p.visitorsMu.Unlock()
}

func (p *Policy) originAllowed(origin string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.origins[origin]
}

// CORS 仅允许白名单中的 Origin，支持 Credentials
func (p *Policy) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && p.originAllowed(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}
		c.Next()
	}
}

func (p *Policy) limiterFor(key string) *rate.Limiter {
	p.mu.RLock()
	limit, burst := p.limit, p.burst
	p.mu.RUnlock()

	p.visitorsMu.Lock()
	defer p.visitorsMu.Unlock()
	v, exists := p.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(limit, burst)}
		p.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Sweep 清理 expiry 内未活跃的 IP
func (p *Policy) Sweep(expiry time.Duration) {
	p.visitorsMu.Lock()
	defer p.visitorsMu.Unlock()
	for ip, v := range p.visitors {
		if time.Since(v.lastSeen) > expiry {
			delete(p.visitors, ip)
		}
	}
}

// RateLimiter 按 IP 限流
func (p *Policy) RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !p.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
