package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reflow_oven/internal/models"
	"reflow_oven/internal/service"

	"github.com/gorilla/websocket"
)

func TestWS_SendsInitialSnapshot(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{},
		Monitoring: &mockMonitoring{state: models.OvenSnapshot{
			Stage: models.StageReflow, TempC: 231.5, HeaterOn: true,
		}},
	}
	srv := httptest.NewServer(newTestRouter(s))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp=%v)", err, resp)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env struct {
		Type string              `json:"type"`
		Data models.OvenSnapshot `json:"data"`
	}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "snapshot" {
		t.Fatalf("type = %q", env.Type)
	}
	if env.Data.Stage != models.StageReflow || !env.Data.HeaterOn {
		t.Fatalf("data = %+v", env.Data)
	}
}

func TestWS_StreamsUpdatesAtInterval(t *testing.T) {
	mon := &mockMonitoring{state: models.OvenSnapshot{Stage: models.StagePreheat, TempC: 80}}
	s := &service.Service{
		Authorization: &mockAuth{},
		Monitoring:    mon,
	}
	srv := httptest.NewServer(newTestRouter(s))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?interval_ms=50"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 3; i++ {
		var env struct {
			Type string              `json:"type"`
			Data models.OvenSnapshot `json:"data"`
		}
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if env.Data.Stage != models.StagePreheat {
			t.Fatalf("frame %d = %+v", i, env.Data)
		}
	}
}
