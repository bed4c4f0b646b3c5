package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"stock-signals/internal/model"
)

func testResult() model.SignalResult {
	return model.SignalResult{
		Signal:      model.Buy,
		Confidence:  90,
		Risk:        model.RiskLow,
		Explanation: "RSI oversold (25.0)",
		GeneratedAt: time.Now(),
	}
}

// attachClient registers a client without a real WS connection.
func attachClient(h *Hub) *Client {
	c := &Client{send: make(chan []byte, 8), hub: h}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		return env
	default:
		t.Fatal("expected an envelope on the client queue")
	}
	return Envelope{}
}

func TestPublish_EnvelopeCarriesFullContext(t *testing.T) {
	h := NewHub(10, nil)
	c := attachClient(h)

	h.Publish(context.Background(), "TCS", "NSE", 3500.5, testResult())

	env := receive(t, c)
	if env.Symbol != "TCS" || env.Exchange != "NSE" || env.Price != 3500.5 {
		t.Errorf("envelope = %s/%s/%.1f", env.Symbol, env.Exchange, env.Price)
	}
	if env.Origin == "" {
		t.Error("envelope must carry the publishing hub's origin id")
	}
	if env.Result.Signal != model.Buy {
		t.Errorf("result signal = %s", env.Result.Signal)
	}
	if h.replay.Len() != 1 {
		t.Errorf("replay entries = %d, want 1", h.replay.Len())
	}
}

func TestFanIn_SkipsOwnPublishes(t *testing.T) {
	h := NewHub(10, nil)
	c := attachClient(h)

	// Redis delivers a publish back to the publishing process; one with
	// this hub's origin must not be broadcast a second time.
	env := Envelope{Type: "analysis", Symbol: "TCS", Exchange: "NSE", Price: 3500, Result: testResult(), Origin: h.id}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	h.consumeFanIn(pubSubPrefix+"TCS", data)

	if len(c.send) != 0 {
		t.Fatalf("self-originated message reached clients, queue = %d", len(c.send))
	}
	if h.replay.Len() != 0 {
		t.Errorf("self-originated message buffered for replay")
	}
}

func TestFanIn_BroadcastsRemotePublishes(t *testing.T) {
	h := NewHub(10, nil)
	c := attachClient(h)

	env := Envelope{Type: "analysis", Symbol: "INFY", Exchange: "BSE", Price: 1500, Result: testResult(), Origin: "other-process"}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	h.consumeFanIn(pubSubPrefix+"INFY", data)

	got := receive(t, c)
	if got.Symbol != "INFY" || got.Exchange != "BSE" || got.Price != 1500 {
		t.Errorf("remote envelope lost context: %s/%s/%.0f", got.Symbol, got.Exchange, got.Price)
	}
	if h.replay.Len() != 1 {
		t.Errorf("remote envelope not buffered for replay")
	}
}

func TestFanIn_IgnoresMalformedPayload(t *testing.T) {
	h := NewHub(10, nil)
	c := attachClient(h)

	h.consumeFanIn(pubSubPrefix+"TCS", []byte("{not json"))

	if len(c.send) != 0 || h.replay.Len() != 0 {
		t.Error("malformed payload must be dropped")
	}
}
