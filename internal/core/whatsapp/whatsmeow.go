// internal/core/whatsapp/whatsmeow.go
package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "github.com/lib/pq"
	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

// WhatsmeowProvider drives a single WhatsApp device directly over the
// multi-device protocol. It has exactly one instance, so instance names
// passed in are ignored.
type WhatsmeowProvider struct {
	storeURL string

	mu     sync.Mutex
	client *whatsmeow.Client
}

func NewWhatsmeowProvider(storeURL string) *WhatsmeowProvider {
	return &WhatsmeowProvider{storeURL: storeURL}
}

func (w *WhatsmeowProvider) GetProviderName() string {
	return "Whatsmeow"
}

func (w *WhatsmeowProvider) initStore(ctx context.Context) (*sqlstore.Container, error) {
	dbLog := waLog.Stdout("Database", "ERROR", true)

	if w.storeURL != "" {
		log.Println("🌐 Using PostgreSQL database for WhatsApp store")
		container, err := sqlstore.New(ctx, "postgres", w.storeURL, dbLog)
		if err != nil {
			return nil, fmt.Errorf("failed to init PostgreSQL store: %w", err)
		}
		if err := container.Upgrade(ctx); err != nil {
			return nil, fmt.Errorf("failed to upgrade PostgreSQL schema: %w", err)
		}
		return container, nil
	}

	log.Println("💾 Using local SQLite store (whatsapp-store.db)")
	rawDB, err := sql.Open("sqlite", "file:whatsapp-store.db?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	container := sqlstore.NewWithDB(rawDB, "sqlite", dbLog)
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade SQLite schema: %w", err)
	}
	return container, nil
}

// ensureClient loads the device and builds the client once.
func (w *WhatsmeowProvider) ensureClient(ctx context.Context) (*whatsmeow.Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client != nil {
		return w.client, nil
	}

	container, err := w.initStore(ctx)
	if err != nil {
		return nil, err
	}
	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	w.client = whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))
	return w.client, nil
}

func (w *WhatsmeowProvider) SendText(ctx context.Context, _ string, phone, text string) error {
	client, err := w.ensureClient(ctx)
	if err != nil {
		return err
	}
	if client.Store.ID == nil {
		return fmt.Errorf("whatsmeow device is not paired")
	}
	if !client.IsConnected() {
		if err := client.Connect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	jid := types.NewJID(phone, types.DefaultUserServer)
	msg := &waProto.Message{
		Conversation: proto.String(text),
	}
	_, err = client.SendMessage(ctx, jid, msg)
	return err
}

func (w *WhatsmeowProvider) CreateInstance(ctx context.Context, instance, _ string) (*InstanceInfo, error) {
	png, err := w.QRCode(ctx, instance)
	if err != nil {
		return nil, err
	}
	return &InstanceInfo{Name: instance, Status: string(StateConnecting), QRCode: png}, nil
}

func (w *WhatsmeowProvider) ConnectionState(ctx context.Context, _ string) (InstanceState, error) {
	client, err := w.ensureClient(ctx)
	if err != nil {
		return StateClose, err
	}
	switch {
	case client.IsConnected() && client.IsLoggedIn():
		return StateOpen, nil
	case client.IsConnected():
		return StateConnecting, nil
	}
	return StateClose, nil
}

// QRCode starts pairing and returns the first code as PNG. A device that is
// already paired has nothing to scan.
func (w *WhatsmeowProvider) QRCode(ctx context.Context, _ string) ([]byte, error) {
	client, err := w.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	if client.Store.ID != nil {
		return nil, fmt.Errorf("device already paired")
	}

	// the channel outlives this request while the user scans
	qrChan, err := client.GetQRChannel(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get qr channel: %w", err)
	}
	if !client.IsConnected() {
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case evt, ok := <-qrChan:
			if !ok {
				return nil, fmt.Errorf("no QR generated")
			}
			switch evt.Event {
			case "code":
				return qrcode.Encode(evt.Code, qrcode.Medium, 256)
			case "success":
				return nil, fmt.Errorf("device already paired")
			case "timeout", "error":
				client.Disconnect()
				return nil, fmt.Errorf("QR generation failed: %s", evt.Event)
			}
		}
	}
}

func (w *WhatsmeowProvider) DeleteInstance(_ context.Context, _ string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.client != nil {
		w.client.Disconnect()
		w.client = nil
		log.Println("🔌 Whatsmeow client disconnected")
	}
	return nil
}
