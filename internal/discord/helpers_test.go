package discord

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

// capturedEdit is a message edit as sent on the wire. Components stay raw
// because discordgo.MessageComponent is an interface.
type capturedEdit struct {
	Content    *string                   `json:"content"`
	Embeds     []*discordgo.MessageEmbed `json:"embeds"`
	Components *[]json.RawMessage        `json:"components"`
}

type capturedRespond struct {
	Type discordgo.InteractionResponseType `json:"type"`
	Data *struct {
		Content string                 `json:"content"`
		Flags   discordgo.MessageFlags `json:"flags"`
	} `json:"data"`
}

// MockRoundTripper intercepts the Discord REST calls a session makes
type MockRoundTripper struct {
	mu       sync.Mutex
	edits    []capturedEdit
	responds []capturedRespond
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	m.mu.Lock()
	switch req.Method {
	case http.MethodPatch:
		var edit capturedEdit
		if json.Unmarshal(body, &edit) == nil {
			m.edits = append(m.edits, edit)
		}
	case http.MethodPost:
		var resp capturedRespond
		if json.Unmarshal(body, &resp) == nil {
			m.responds = append(m.responds, resp)
		}
	}
	m.mu.Unlock()

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString("{}")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// LastEdit returns the most recent message edit
func (m *MockRoundTripper) LastEdit(t *testing.T) capturedEdit {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.edits, "expected a message edit")
	return m.edits[len(m.edits)-1]
}

// Responds returns every interaction callback sent so far
func (m *MockRoundTripper) Responds() []capturedRespond {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]capturedRespond(nil), m.responds...)
}

// EditCount returns how many message edits were sent
func (m *MockRoundTripper) EditCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edits)
}

// TestContext wires a fake PullBot API and a Discord session whose REST
// traffic is captured instead of sent
type TestContext struct {
	Server    *httptest.Server
	Mux       *http.ServeMux
	APIClient *APIClient
	Session   *discordgo.Session
	Discord   *MockRoundTripper
}

func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)

	rt := &MockRoundTripper{}
	session.Client = &http.Client{Transport: rt}

	return &TestContext{
		Server:    server,
		Mux:       mux,
		APIClient: NewAPIClient(server.URL, "test-api-key"),
		Session:   session,
		Discord:   rt,
	}
}

// WriteJSON writes data as a JSON body with the given status
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func commandInteraction(name, userID string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:    "interaction-" + name,
			AppID: "app",
			Token: "token",
			Type:  discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: opts,
			},
			Member: &discordgo.Member{
				User: &discordgo.User{ID: userID, Username: "Tester"},
			},
		},
	}
}

func buttonInteraction(customID, userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:    "interaction-button",
			AppID: "app",
			Token: "token",
			Type:  discordgo.InteractionMessageComponent,
			Data: discordgo.MessageComponentInteractionData{
				CustomID:      customID,
				ComponentType: discordgo.ButtonComponent,
			},
			Member: &discordgo.Member{
				User: &discordgo.User{ID: userID, Username: "Clicker"},
			},
		},
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	// Option values arrive from the gateway as JSON numbers
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}
