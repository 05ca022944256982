package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/foxmcp/foxmcp/pkg/bridge"
	"github.com/foxmcp/foxmcp/pkg/logger"
	"github.com/foxmcp/foxmcp/pkg/mcptools"
	"github.com/foxmcp/foxmcp/pkg/monitor"
	"github.com/foxmcp/foxmcp/pkg/networking"
	"github.com/foxmcp/foxmcp/pkg/scripts"
	"github.com/foxmcp/foxmcp/pkg/versions"
)

const (
	// DefaultWSPort is the default WebSocket port the extension connects to.
	DefaultWSPort = 8765
	// DefaultMCPPort is the default port for the MCP streamable HTTP endpoint.
	DefaultMCPPort = 3000

	shutdownTimeout = 10 * time.Second
)

var (
	serveHost         string
	serveWSPort       int
	serveMCPPort      int
	serveNoMCP        bool
	servePingInterval time.Duration
)

// newServeCommand creates the 'serve' subcommand
func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge between the browser extension and MCP clients",
		Long: `Start the foxmcp bridge. One listener accepts the browser extension's
WebSocket connection, the other serves the MCP streamable HTTP endpoint.
Both bind to the loopback interface; a non-loopback --host is rewritten
to 127.0.0.1 with a warning.

The predefined-script directory is configured via the FOXMCP_EXT_SCRIPTS
environment variable; when unset, content_execute_predefined is disabled.`,
		RunE: serveCmdFunc,
	}

	cmd.Flags().StringVar(&serveHost, "host", networking.DefaultHost, "Host to bind both listeners to (loopback only)")
	cmd.Flags().IntVar(&serveWSPort, "port", DefaultWSPort, "Port for the extension WebSocket endpoint")
	cmd.Flags().IntVar(&serveMCPPort, "mcp-port", DefaultMCPPort, "Port for the MCP streamable HTTP endpoint")
	cmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "Run the WebSocket endpoint without the MCP server")
	cmd.Flags().DurationVar(&servePingInterval, "ping-interval", 30*time.Second, "Interval between liveness pings to the extension")

	return cmd
}

func serveCmdFunc(cmd *cobra.Command, _ []string) error {
	host := networking.EnsureLoopback(serveHost)
	if !networking.IsAvailable(serveWSPort) {
		return fmt.Errorf("WebSocket port %d is already in use", serveWSPort)
	}
	if !serveNoMCP && !networking.IsAvailable(serveMCPPort) {
		return fmt.Errorf("MCP port %d is already in use", serveMCPPort)
	}

	scriptExec := scripts.NewExecutor(viper.GetString("ext-scripts"))
	if scriptExec.Configured() {
		logger.Infof("Predefined scripts enabled from %s", viper.GetString("ext-scripts"))
	} else {
		logger.Info("FOXMCP_EXT_SCRIPTS not set; content_execute_predefined is disabled")
	}

	br := bridge.New(servePingInterval)
	monitors := monitor.NewRegistry(0)
	br.OnNotification(monitors.HandleNotification)
	br.OnDisconnect(monitors.InvalidateAll)

	wsSrv := &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(serveWSPort)),
		Handler:           newWSRouter(br),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var mcpSrv *http.Server
	if !serveNoMCP {
		handler := mcptools.NewHandler(br, monitors, scriptExec)
		mcpServer := mcptools.NewMCPServer(versions.GetVersionInfo().Version, handler)
		mcpSrv = &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(serveMCPPort)),
			Handler:           mcptools.NewStreamableHTTPServer(mcpServer),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Extension WebSocket endpoint listening on ws://%s/ws", wsSrv.Addr)
		if err := wsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("WebSocket server: %w", err)
		}
		return nil
	})
	if mcpSrv != nil {
		g.Go(func() error {
			logger.Infof("MCP endpoint listening on http://%s/mcp", mcpSrv.Addr)
			if err := mcpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var err error
		if mcpSrv != nil {
			err = mcpSrv.Shutdown(shutdownCtx)
		}
		if werr := wsSrv.Shutdown(shutdownCtx); werr != nil && err == nil {
			err = werr
		}
		return err
	})

	return g.Wait()
}

// newWSRouter serves the extension-facing endpoints: the WebSocket upgrade
// and a health probe reporting connection state.
func newWSRouter(br *bridge.Bridge) http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", br.ServeWS)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"status":              "ok",
			"extension_connected": br.Connected(),
		}); err != nil {
			logger.Errorf("Error writing health response: %v", err)
		}
	})
	return r
}
