package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/Werneck0live/cadastro-cnpj/internal/broker"
	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
	"github.com/Werneck0live/cadastro-cnpj/internal/config"
	"github.com/Werneck0live/cadastro-cnpj/internal/handlers"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
	"github.com/Werneck0live/cadastro-cnpj/internal/utils"
	"github.com/Werneck0live/cadastro-cnpj/internal/ws"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Ajuste CORS conforme necessário
	CheckOrigin: func(r *http.Request) bool { return true },
}

// cmd/ws: relays company events from RabbitMQ to websocket clients.
// GET /ws follows every company; GET /ws?cnpj=11.222.333/0001-81 only one.
func main() {
	wscfg := config.LoadWSConfig()

	log := config.InitLogger(wscfg.Logging).With("svc", "ws")
	if err := wscfg.Validate(); err != nil {
		log.Error("invalid_config", "err", err)
		os.Exit(2)
	}
	hub := ws.NewHub(log)
	go hub.Run()

	cons, err := broker.NewConsumer(wscfg.RabbitURI, wscfg.RabbitQueue, "ws-consumer", wscfg.ConsumerPrefetch, log)
	if err != nil {
		log.Error("rabbit_consumer_start_error", "err", err)
		os.Exit(1)
	}
	defer func() { _ = cons.Close() }()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWS(hub, wscfg.ClientBuffer, w, r, log)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": hub.Count()})
	})

	srv := &http.Server{
		Addr:              wscfg.Addr,
		Handler:           logMiddleware(log)(mux),
		ReadHeaderTimeout: wscfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// encaminha mensagens do Rabbit para o hub
	g.Go(func() error {
		return cons.Run(gctx, func(ev models.CompanyEvent, body []byte) {
			hub.Publish(ws.Message{CNPJ: ev.CNPJ, Body: body})
		})
	})

	g.Go(func() error {
		log.Info("ws_listen", "addr", wscfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown: sinal ou falha de um dos lados
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), wscfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("ws_stopped_with_error", "err", err)
	}
	hub.Stop()
	log.Info("stopped")
}

func handleWS(hub *ws.Hub, buffer int, w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var follow string
	if raw := r.URL.Query().Get("cnpj"); raw != "" {
		c, err := cnpj.New(raw)
		if err != nil {
			utils.BadRequest(w, "cnpj must be a valid cnpj")
			return
		}
		follow = c.String()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("ws_upgrade_error", "err", err)
		return
	}

	client := &ws.Client{CNPJ: follow, Send: make(chan []byte, buffer)}
	hub.Register(client)
	log.Info("ws_client_connected", "id", client.ID, "cnpj", follow)

	// writer: Send fechado pelo hub encerra a conexão
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer func() {
			ticker.Stop()
			_ = conn.Close()
		}()
		for {
			select {
			case msg, ok := <-client.Send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// reader: detecta o fechamento do WebSocket
	go func() {
		defer func() {
			hub.Unregister(client)
			_ = conn.Close()
		}()
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// logMiddleware reuses the API request log, except for websocket upgrades:
// the hijacked connection must get the original ResponseWriter.
func logMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		logged := handlers.LogMiddleware(log, nil)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			logged.ServeHTTP(w, r)
		})
	}
}
