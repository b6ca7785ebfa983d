package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"distributed-kmer-table/internal/kmer"
	"distributed-kmer-table/internal/services"
	"distributed-kmer-table/internal/util"
)

// Http Server 管理

// NewMux 组装路由；独立出来便于测试
func NewMux(svc services.TableService) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/kmer", func(w http.ResponseWriter, r *http.Request) {
		seq := r.URL.Query().Get("seq")
		if seq == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("missing seq"))
			return
		}

		switch r.Method {
		case http.MethodPut: // PUT 路由约定为插入操作，body 为两个扩展碱基
			extBytes, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("read body error"))
				return
			}
			defer r.Body.Close()

			if len(extBytes) != 2 {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("body must be two extension bases"))
				return
			}

			rec, err := kmer.NewRecord(seq, extBytes[0], extBytes[1])
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(err.Error()))
				return
			}

			ok, err := svc.Insert(r.Context(), rec)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
			if !ok {
				// 探测序列饱和：正常可报告结果，不是服务故障
				w.WriteHeader(http.StatusInsufficientStorage)
				_, _ = w.Write([]byte("probe sequence exhausted"))
				return
			}
			w.WriteHeader(http.StatusNoContent)

		case http.MethodGet: // GET 路由约定为查找操作，返回两个扩展碱基
			key, err := kmer.Pack(seq)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(err.Error()))
				return
			}

			rec, found, err := svc.Find(r.Context(), key, uint8(len(seq)))
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte{rec.ExtF, rec.ExtB})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		st, err := svc.Stats(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "capacity=%d ranks=%d rank=%d segment_size=%d local_used=%d ready=%v\n",
			st.Capacity, st.Ranks, st.Rank, st.SegmentSize, st.LocalUsed, st.Ready)
	})

	return mux
}

// StartHTTPServer 启动对外提供 k-mer 表服务的 HTTP Server。
func StartHTTPServer(ctx context.Context, addr string, svc services.TableService) error {
	mux := NewMux(svc)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	// 优雅关闭
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			util.L().Errorf("http server shutdown error: %v", err)
		}
	}()

	util.L().Infof("HTTP server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
