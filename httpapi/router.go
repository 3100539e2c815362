// Package httpapi is the client-facing surface: a small gin router that
// submits writes into the consensus core and serves reads from the local
// FSM, mirroring the shape leifdb's own client API takes (gin + rs/cors):
// a fixed set of key/value routes over the Host interface's SubmitKV and
// QueryKV.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ginSwagger "github.com/swaggo/gin-swagger"
	swaggerFiles "github.com/swaggo/gin-swagger/swaggerFiles"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	_ "github.com/raftlog/raftd/httpapi/docs"
	"github.com/raftlog/raftd/raft"
	"github.com/raftlog/raftd/store"
)

// Host is what the router needs from the running node: a way to submit a
// write and wait for the result, a way to run a read against the local
// FSM, and a status snapshot.
type Host interface {
	SubmitKV(ctx context.Context, op store.Op) error
	QueryKV(ctx context.Context, key string) (store.QueryResult, error)
	Status() raft.SharedStateView
	Role() raft.RaftRole
}

// NewRouter builds the gin engine. requestTimeout bounds how long a
// submit/query handler waits before giving up and replying 503.
func NewRouter(host Host, logger zerolog.Logger, requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginzerolog(logger))
	r.Use(corsMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			state := host.Status()
			c.JSON(http.StatusOK, gin.H{
				"role":         host.Role().String(),
				"term":         state.CurrentTerm,
				"commit_index": state.CommitIndex,
				"last_applied": state.LastApplied,
			})
		})

		v1.GET("/kv/:key", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
			defer cancel()

			res, err := host.QueryKV(ctx, c.Param("key"))
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			if !res.Found {
				c.JSON(http.StatusNotFound, gin.H{"found": false})
				return
			}
			c.JSON(http.StatusOK, gin.H{"found": true, "value": res.Value})
		})

		v1.PUT("/kv/:key", func(c *gin.Context) {
			value, err := c.GetRawData()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			submitOrReject(c, host, requestTimeout, store.Op{Kind: store.OpSet, Key: c.Param("key"), Value: value})
		})

		v1.DELETE("/kv/:key", func(c *gin.Context) {
			submitOrReject(c, host, requestTimeout, store.Op{Kind: store.OpDelete, Key: c.Param("key")})
		})
	}

	return r
}

func submitOrReject(c *gin.Context, host Host, timeout time.Duration, op store.Op) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := host.SubmitKV(ctx, op); err != nil {
		if err == raft.ErrNotLeader {
			c.JSON(http.StatusConflict, gin.H{"error": "not leader"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"committed": true})
}

func corsMiddleware() gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		ctx.Next()
	}
}

func ginzerolog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
