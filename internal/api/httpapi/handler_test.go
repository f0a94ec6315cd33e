package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/folioworks/folio/internal/payout"
	"github.com/folioworks/folio/internal/registry/service"
	"github.com/folioworks/folio/internal/storage/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *payout.Bank) {
	t.Helper()
	store := memory.New()
	bank := payout.NewBank()
	registry := service.New(
		service.Stores{Page: store, Request: store, Reaction: store},
		service.WithTransferrer(bank),
	)
	server := httptest.NewServer(New(registry))
	t.Cleanup(server.Close)
	return server, bank
}

func doJSON(t *testing.T, method, url, caller string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if caller != "" {
		req.Header.Set(PrincipalHeader, caller)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func createPageBody(kind string, owners []string, threshold int, fee uint64) map[string]any {
	return map[string]any{
		"name":        "Field Notes",
		"thumbnail":   "https://cdn.example/t.png",
		"content":     "<folio>hello</folio>",
		"policy_kind": kind,
		"owners":      owners,
		"threshold":   threshold,
		"update_fee":  fee,
	}
}

func TestCreatePageEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/v1/pages", "",
		createPageBody("single", []string{"alice"}, 1, 100))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %v)", resp.StatusCode, body)
	}
	if body["id"].(float64) != 1 {
		t.Fatalf("id = %v, want 1", body["id"])
	}
	if body["policy_kind"] != "single" {
		t.Fatalf("policy_kind = %v", body["policy_kind"])
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/v1/pages", "",
		createPageBody("single", []string{"alice", "bob"}, 1, 0))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid config status = %d, want 400", resp.StatusCode)
	}
	if body["code"] != "POLICY_INVALID_CONFIG" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestUpdatePipelineEndpoints(t *testing.T) {
	server, bank := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/v1/pages", "",
		createPageBody("single", []string{"alice"}, 1, 100))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/updates", "bob",
		map[string]any{"content": "<folio>v2</folio>", "fee": 100})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d (body %v)", resp.StatusCode, body)
	}
	if body["seq"].(float64) != 0 {
		t.Fatalf("seq = %v, want 0", body["seq"])
	}

	// Fee below minimum maps to 409.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/updates", "bob",
		map[string]any{"content": "<folio>v3</folio>", "fee": 1})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cheap submit status = %d, want 409", resp.StatusCode)
	}
	if body["code"] != "FEE_INSUFFICIENT" {
		t.Fatalf("code = %v", body["code"])
	}

	// A stranger cannot approve.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/updates/0/approve", "mallory", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger approve status = %d, want 403 (body %v)", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/updates/0/approve", "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve status = %d (body %v)", resp.StatusCode, body)
	}
	if body["executed"] != true {
		t.Fatalf("executed = %v, want true", body["executed"])
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/v1/pages/1/content", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("content status = %d", resp.StatusCode)
	}
	if body["content"] != "<folio>v2</folio>" {
		t.Fatalf("content = %v", body["content"])
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/withdraw", "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("withdraw status = %d", resp.StatusCode)
	}
	if got := bank.BalanceOf("alice"); got != 100 {
		t.Fatalf("alice balance = %d, want 100", got)
	}
}

func TestReadEndpointsAndErrorMapping(t *testing.T) {
	server, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/v1/pages/7", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing page status = %d, want 404", resp.StatusCode)
	}
	if body["code"] != "PAGE_NOT_FOUND" {
		t.Fatalf("code = %v", body["code"])
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/v1/pages", "",
		createPageBody("multisig", []string{"alice", "bob", "carol"}, 2, 0))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/v1/pages/1/owners", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owners status = %d", resp.StatusCode)
	}
	owners := body["owners"].([]any)
	if len(owners) != 3 {
		t.Fatalf("owners = %v", owners)
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/v1/pages/count", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("count status = %d", resp.StatusCode)
	}
	if body["count"].(float64) != 1 {
		t.Fatalf("count = %v", body["count"])
	}

	// Withdrawing an empty treasury maps to 409 with metadata.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/withdraw", "alice", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("empty withdraw status = %d, want 409", resp.StatusCode)
	}
	if body["code"] != "TREASURY_EMPTY" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestVoteEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/v1/pages", "",
		createPageBody("permissionless", nil, 0, 0))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/vote", "bob",
		map[string]any{"kind": "like"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("vote status = %d (body %v)", resp.StatusCode, body)
	}
	if body["liked"] != true {
		t.Fatalf("liked = %v", body["liked"])
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/v1/pages/1/reactions/bob", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get reaction status = %d", resp.StatusCode)
	}
	if body["liked"] != true {
		t.Fatalf("stored liked = %v", body["liked"])
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/vote", "bob",
		map[string]any{"kind": "sideways"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad kind status = %d, want 400 (body %v)", resp.StatusCode, body)
	}
	if body["code"] != "REACTION_INVALID_KIND" {
		t.Fatalf("code = %v", body["code"])
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/v1/pages/abc", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400 (body %v)", resp.StatusCode, body)
	}
}

func TestDistributeEndpoint(t *testing.T) {
	server, bank := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/v1/pages", "",
		createPageBody("permissionless", nil, 0, 10))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	for i, submitter := range []string{"wanda", "victor"} {
		resp, body := doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/updates", submitter,
			map[string]any{"content": fmt.Sprintf("<folio>edit %d</folio>", i), "fee": 10})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("submit %s status = %d (body %v)", submitter, resp.StatusCode, body)
		}
		if body["executed"] != true {
			t.Fatalf("submission by %s not executed", submitter)
		}
	}

	resp, body := doJSON(t, http.MethodGet, server.URL+"/v1/pages/1/participants", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("participants status = %d", resp.StatusCode)
	}
	if got := body["participants"].([]any); len(got) != 2 {
		t.Fatalf("participants = %v", got)
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/distribute", "anyone", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("distribute status = %d (body %v)", resp.StatusCode, body)
	}
	winner := body["winner"].(string)
	if winner != "wanda" && winner != "victor" {
		t.Fatalf("winner = %q", winner)
	}
	if got := bank.BalanceOf(winner); got != 20 {
		t.Fatalf("winner balance = %d, want 20", got)
	}
}

func TestMissingPrincipalHeaderRejected(t *testing.T) {
	server, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/v1/pages", "",
		createPageBody("permissionless", nil, 0, 10))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d (body %v)", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/v1/pages/1/updates", "",
		map[string]any{"content": "<folio>anon</folio>", "fee": 10})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous submit status = %d, want 401", resp.StatusCode)
	}
	if body["code"] != "PRINCIPAL_MISSING" {
		t.Fatalf("code = %v", body["code"])
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/v1/pages/1/participants", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("participants status = %d", resp.StatusCode)
	}
	if got := body["participants"].([]any); len(got) != 0 {
		t.Fatalf("participants = %v, want none", got)
	}
}
