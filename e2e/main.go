package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/app"
	http_auth "github.com/humanbelnik/movienight/internal/delivery/http/auth"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	http_preference "github.com/humanbelnik/movienight/internal/delivery/http/preference"
	http_rating "github.com/humanbelnik/movienight/internal/delivery/http/rating"
	http_round "github.com/humanbelnik/movienight/internal/delivery/http/round"
	http_vote "github.com/humanbelnik/movienight/internal/delivery/http/vote"
)

// The scenario expects a server started with SEED_DEMO=true and a working TMDB key.

func baseURL() string {
	if url := os.Getenv("E2E_BASE_URL"); url != "" {
		return url
	}
	switch os.Getenv("ENV") {
	case "CI":
		return "http://movienight-app:8080/api/v1"
	}
	return "http://localhost:8080/api/v1"
}

func householdCode() string {
	if code := os.Getenv("E2E_CODE"); code != "" {
		return code
	}
	return "shared"
}

type member struct {
	name  string
	id    uuid.UUID
	token string
}

func main() {
	fmt.Println("Starting E2E movie night for movienight API...")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	if !waitForService(client) {
		os.Exit(1)
	}

	if err := run(client); err != nil {
		fmt.Printf("E2E failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n All E2E steps passed!")
}

func run(client *http.Client) error {
	groupID := app.DemoID("group")
	household := []*member{
		{name: "Ann", id: app.DemoID("ann")},
		{name: "Alice", id: app.DemoID("alice")},
		{name: "Bob", id: app.DemoID("bob")},
	}
	ann := household[0]

	fmt.Println("\n Step 1: Opening sessions...")
	for _, m := range household {
		token, err := login(client, m.id)
		if err != nil {
			return fmt.Errorf("login %s: %w", m.name, err)
		}
		m.token = token
	}

	fmt.Println("\n Step 2: Saving preferences...")
	prefs := map[string]http_preference.PreferenceRequestDTO{
		"Ann":   {LikedGenres: []string{"Crime", "Thriller"}, MaxContentRating: "R"},
		"Alice": {LikedGenres: []string{"Crime", "Drama"}, MaxContentRating: "R"},
		"Bob":   {LikedGenres: []string{"Thriller"}, DislikedGenres: []string{"Horror"}, MaxContentRating: "PG-13"},
	}
	for _, m := range household {
		path := fmt.Sprintf("/groups/%s/preferences/me", groupID)
		if err := call(client, http.MethodPut, path, m.token, prefs[m.name], http.StatusOK, nil); err != nil {
			return fmt.Errorf("preferences %s: %w", m.name, err)
		}
	}

	fmt.Println("\n Step 3: Starting a round...")
	var created http_round.CreateRoundResponseDTO
	err := call(client, http.MethodPost, fmt.Sprintf("/groups/%s/rounds", groupID), ann.token,
		http_round.CreateRoundRequestDTO{}, http.StatusCreated, &created)
	if err != nil {
		return fmt.Errorf("create round: %w", err)
	}
	if len(created.Suggestions) == 0 {
		return fmt.Errorf("round %s has no suggestions", created.Round.ID)
	}
	roundID := created.Round.ID
	fmt.Printf("Round %s opened with %d suggestions (relaxed: %v)\n",
		roundID, len(created.Suggestions), created.RelaxedConstraints)

	fmt.Println("\n Step 4: Voting...")
	favourite := created.Suggestions[0].Movie.ID
	for _, m := range household {
		vote := http_vote.VoteRequestDTO{MovieID: favourite, Value: "up"}
		err := call(client, http.MethodPost, fmt.Sprintf("/rounds/%s/votes", roundID), m.token, vote, http.StatusOK, nil)
		if err != nil {
			return fmt.Errorf("vote %s: %w", m.name, err)
		}
	}

	var results http_vote.ResultsResponseDTO
	if err := call(client, http.MethodGet, fmt.Sprintf("/rounds/%s/results", roundID), ann.token, nil, http.StatusOK, &results); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	if len(results.Ranking) == 0 || results.Ranking[0].MovieID != favourite {
		return fmt.Errorf("expected movie %d to lead the ranking", favourite)
	}
	if results.Voted != len(household) {
		return fmt.Errorf("expected %d voters, got %d", len(household), results.Voted)
	}

	fmt.Println("\n Step 5: Closing and picking...")
	if err := call(client, http.MethodPost, fmt.Sprintf("/rounds/%s/close", roundID), ann.token, nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	pick := http_round.PickRequestDTO{MovieID: favourite}
	if err := call(client, http.MethodPost, fmt.Sprintf("/rounds/%s/pick", roundID), ann.token, pick, http.StatusCreated, nil); err != nil {
		return fmt.Errorf("pick: %w", err)
	}
	watched := http_round.StatusRequestDTO{Status: "watched"}
	if err := call(client, http.MethodPatch, fmt.Sprintf("/rounds/%s/status", roundID), ann.token, watched, http.StatusOK, nil); err != nil {
		return fmt.Errorf("mark watched: %w", err)
	}

	fmt.Println("\n Step 6: Rating...")
	var last http_rating.RatingResponseDTO
	for _, m := range household {
		rating := http_rating.RatingRequestDTO{Value: "loved"}
		err := call(client, http.MethodPut, fmt.Sprintf("/rounds/%s/ratings", roundID), m.token, rating, http.StatusOK, &last)
		if err != nil {
			return fmt.Errorf("rate %s: %w", m.name, err)
		}
	}
	if !last.Completed || last.RoundStatus != "rated" {
		return fmt.Errorf("round %s not rated after every attendee rated, status %q", roundID, last.RoundStatus)
	}

	fmt.Println("\n Step 7: Closing sessions...")
	for _, m := range household {
		if err := call(client, http.MethodDelete, "/sessions", m.token, nil, http.StatusNoContent, nil); err != nil {
			return fmt.Errorf("logout %s: %w", m.name, err)
		}
	}
	return nil
}

func waitForService(client *http.Client) bool {
	fmt.Println(" Waiting for service to be ready...")

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		resp, err := client.Get(baseURL() + "/metrics")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				fmt.Println(" Service is ready!")
				return true
			}
		}

		if i < maxRetries-1 {
			fmt.Printf(" Service not ready yet (attempt %d/%d)...\n", i+1, maxRetries)
			time.Sleep(2 * time.Second)
		}
	}

	fmt.Println(" Service didn't start in time")
	return false
}

func login(client *http.Client, memberID uuid.UUID) (string, error) {
	req := http_auth.LoginRequestDTO{Code: householdCode(), MemberID: memberID}

	var resp http_auth.SessionResponseDTO
	if err := call(client, http.MethodPost, "/sessions", "", req, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("session token not found in response")
	}
	return resp.Token, nil
}

// call sends body as JSON and decodes the response into out when it is non-nil.
func call(client *http.Client, method, path, token string, body any, want int, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL()+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(http_common.TokenHeader, token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
