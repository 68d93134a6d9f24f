package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	CompressionLevel int      // Gzip compression level (1-9, 9 is best compression)
	ExcludedPrefixes []string // paths served uncompressed
}

// DefaultCompressionConfig returns the default compression configuration.
// Prometheus negotiates its own encoding, so /metrics is excluded.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		CompressionLevel: gzip.DefaultCompression,
		ExcludedPrefixes: []string{"/metrics", "/swagger/"},
	}
}

// CompressionMiddleware gzips responses for clients that accept it
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	level := config.CompressionLevel
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return &CompressionMiddleware{
		config: config,
		stats:  &CompressionStats{},
		pool: sync.Pool{
			New: func() interface{} {
				gz, _ := gzip.NewWriterLevel(io.Discard, level)
				return gz
			},
		},
	}
}

// Handler returns the Gin middleware
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cm.clientAcceptsGzip(c.Request) || cm.excluded(c.Request.URL.Path) {
			cm.stats.totalRequests.Add(1)
			c.Next()
			return
		}

		gz := cm.pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")

		gw := &gzipResponseWriter{ResponseWriter: c.Writer, writer: gz}
		c.Writer = gw

		defer func() {
			// outer handlers, including panic recovery, write to the real writer
			c.Writer = gw.ResponseWriter
			if gw.size == 0 {
				// nothing written; a gzip footer would corrupt an empty body
				c.Writer.Header().Del("Content-Encoding")
				gz.Reset(io.Discard)
			} else {
				_ = gz.Close()
			}
			cm.pool.Put(gz)
			cm.stats.record(gw.size)
		}()

		c.Next()
	}
}

func (cm *CompressionMiddleware) clientAcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

func (cm *CompressionMiddleware) excluded(path string) bool {
	for _, prefix := range cm.config.ExcludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// gzipResponseWriter routes the body through the gzip writer
type gzipResponseWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
	size   int64
}

func (g *gzipResponseWriter) WriteHeader(code int) {
	g.Header().Del("Content-Length")
	g.ResponseWriter.WriteHeader(code)
}

func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	g.Header().Del("Content-Length")
	n, err := g.writer.Write(data)
	g.size += int64(n)
	return n, err
}

func (g *gzipResponseWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

func (g *gzipResponseWriter) Flush() {
	_ = g.writer.Flush()
	g.ResponseWriter.Flush()
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	totalRequests      atomic.Int64
	compressedRequests atomic.Int64
	uncompressedBytes  atomic.Int64
}

func (cs *CompressionStats) record(size int64) {
	cs.totalRequests.Add(1)
	if size > 0 {
		cs.compressedRequests.Add(1)
		cs.uncompressedBytes.Add(size)
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"total_requests":      cm.stats.totalRequests.Load(),
		"compressed_requests": cm.stats.compressedRequests.Load(),
		"uncompressed_bytes":  cm.stats.uncompressedBytes.Load(),
	}
}
