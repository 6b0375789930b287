package websocket

import (
	"encoding/json"
	"sync"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/service"
	"github.com/construtorcheck/construtorcheck-backend/pkg/logger"
)

// Hub fans review events out to live feed subscribers. Each client watches
// exactly one company page; the special channel 0 receives every event and
// backs the homepage ticker.
type Hub struct {
	// CompanyID -> subscribed clients.
	companies map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *feedMessage

	mu sync.RWMutex
}

type feedMessage struct {
	CompanyID uint
	Payload   []byte
}

func NewHub() *Hub {
	return &Hub{
		companies:  make(map[uint]map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan *feedMessage, 1024),
	}
}

// Run owns the subscriber maps. All map mutation happens on this goroutine;
// the mutex only guards the read paths (SubscriberCount, broadcast fanout).
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.companies[client.CompanyID]; !ok {
				h.companies[client.CompanyID] = make(map[*Client]bool)
			}
			h.companies[client.CompanyID][client] = true
			h.mu.Unlock()
			logger.Debug("Feed subscriber connected", map[string]interface{}{
				"company_id": client.CompanyID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if subscribers, ok := h.companies[client.CompanyID]; ok {
				if _, subscribed := subscribers[client]; subscribed {
					delete(subscribers, client)
					close(client.Send)
					if len(subscribers) == 0 {
						delete(h.companies, client.CompanyID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			h.deliver(h.companies[message.CompanyID], message.Payload)
			if message.CompanyID != feedAllCompanies {
				h.deliver(h.companies[feedAllCompanies], message.Payload)
			}
			h.mu.RUnlock()
		}
	}
}

// feedAllCompanies subscribes a client to every company's events.
const feedAllCompanies uint = 0

func (h *Hub) deliver(subscribers map[*Client]bool, payload []byte) {
	for client := range subscribers {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer: drop the connection rather than block the hub.
			go h.Unregister(client)
		}
	}
}

// PublishReviewCreated implements service.ReviewFeed. Events are dropped
// when the broadcast buffer is full; the feed is best-effort.
func (h *Hub) PublishReviewCreated(event service.ReviewCreatedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal feed event", err, nil)
		return
	}

	select {
	case h.broadcast <- &feedMessage{CompanyID: event.CompanyID, Payload: payload}:
	default:
		logger.Warn("Feed broadcast buffer full, event dropped", map[string]interface{}{
			"company_id": event.CompanyID,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SubscriberCount reports how many clients watch the given company.
func (h *Hub) SubscriberCount(companyID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.companies[companyID])
}
