// Package control exposes a running automation engine over a unix-socket
// JSON-RPC interface so the CLI can query and steer it.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/rmaran/assetflow/internal/engine"
	"github.com/rmaran/assetflow/internal/logger"
	"github.com/rmaran/assetflow/internal/watcher"
)

var log = logger.ForComponent("control")

// Server accepts control connections for one engine/watch-set pair.
type Server struct {
	socketPath string
	engine     *engine.Engine
	watchSet   *watcher.WatchSet
	onShutdown func()

	listener net.Listener
	connMu   sync.Mutex
	conns    map[*jsonrpc2.Conn]struct{}
	closed   bool
}

func NewServer(socketPath string, eng *engine.Engine, ws *watcher.WatchSet, onShutdown func()) *Server {
	return &Server{
		socketPath: socketPath,
		engine:     eng,
		watchSet:   ws,
		onShutdown: onShutdown,
		conns:      make(map[*jsonrpc2.Conn]struct{}),
	}
}

func (s *Server) Start(ctx context.Context) error {
	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0700); err != nil {
		listener.Close()
		return fmt.Errorf("chmod control socket: %w", err)
	}

	s.listener = listener
	go s.accept(ctx)

	log.Info("control socket listening", "path", s.socketPath)
	return nil
}

func (s *Server) accept(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.connMu.Lock()
			closed := s.closed
			s.connMu.Unlock()
			if !closed {
				log.Error("accept failed", "error", err)
			}
			return
		}

		stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
		rpcConn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))

		s.connMu.Lock()
		s.conns[rpcConn] = struct{}{}
		s.connMu.Unlock()

		go func() {
			<-rpcConn.DisconnectNotify()
			s.connMu.Lock()
			delete(s.conns, rpcConn)
			s.connMu.Unlock()
		}()
	}
}

func (s *Server) Stop() {
	s.connMu.Lock()
	s.closed = true
	conns := make([]*jsonrpc2.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.connMu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case MethodStatus:
		return StatusResult{
			Running:       s.watchSet.Running(),
			ActiveWatches: s.watchSet.ActiveWatches(),
			Statistics:    s.engine.Statistics(),
		}, nil

	case MethodStatistics:
		return s.engine.Statistics(), nil

	case MethodReport:
		var params ReportParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		if params.OutputPath != "" {
			report, err := s.engine.WriteReport(params.OutputPath)
			return ReportResult{Report: report}, err
		}
		return ReportResult{Report: s.engine.GenerateReport()}, nil

	case MethodFolderAdd:
		var params FolderParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		added, err := s.watchSet.AddFolder(params.Path, params.Category)
		if err != nil {
			return nil, err
		}
		return FolderResult{Changed: added}, nil

	case MethodFolderRemove:
		var params FolderParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		removed, err := s.watchSet.RemoveFolder(params.Path)
		if err != nil {
			return nil, err
		}
		return FolderResult{Changed: removed}, nil

	case MethodBatchImport:
		var params BatchParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.engine.BatchImport(params.Paths, params.Destination, params.Category), nil

	case MethodStatsReset:
		s.engine.ResetStatistics()
		return FolderResult{Changed: true}, nil

	case MethodShutdown:
		log.Info("shutdown requested over control socket")
		if s.onShutdown != nil {
			go s.onShutdown()
		}
		return FolderResult{Changed: true}, nil

	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("unknown method %q", req.Method),
		}
	}
}

func unmarshalParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
