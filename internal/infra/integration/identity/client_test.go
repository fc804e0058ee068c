package identity_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anglerclubs/roster-api/internal/infra/integration/identity"
)

func TestCreateAccount(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/users", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "user-123", "email": "jane@x.com"})
	}))
	defer server.Close()

	client := identity.NewClient("service-key", server.URL)
	handle, err := client.CreateAccount(context.Background(), "jane@x.com", "secret", map[string]interface{}{
		"name": "Jane Doe",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-123", handle)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "jane@x.com", gotBody["email"])
	assert.Equal(t, true, gotBody["email_confirm"])
}

func TestCreateAccountRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"msg":"email already registered"}`)
	}))
	defer server.Close()

	client := identity.NewClient("service-key", server.URL)
	_, err := client.CreateAccount(context.Background(), "jane@x.com", "secret", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "jane@x.com")
	assert.Contains(t, err.Error(), "422")
}

func TestListExistingEmailsPagesThrough(t *testing.T) {
	// Two pages: a full first page (1000 users) and a short second page.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/users", r.URL.Path)
		page := r.URL.Query().Get("page")

		var users []map[string]string
		switch page {
		case "1":
			for i := 0; i < 1000; i++ {
				users = append(users, map[string]string{"id": fmt.Sprintf("u-%d", i), "email": fmt.Sprintf("user%d@x.com", i)})
			}
		case "2":
			users = append(users, map[string]string{"id": "u-last", "email": "last@x.com"})
		default:
			t.Fatalf("unexpected page %s", page)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"users": users})
	}))
	defer server.Close()

	client := identity.NewClient("service-key", server.URL)
	emails, err := client.ListExistingEmails(context.Background())

	assert.NoError(t, err)
	assert.Len(t, emails, 1001)
	_, ok := emails["user42@x.com"]
	assert.True(t, ok)
	_, ok = emails["last@x.com"]
	assert.True(t, ok)
}

func TestGenerateRecoveryLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/generate_link", r.URL.Path)

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "recovery", body["type"])
		assert.Equal(t, "jane@x.com", body["email"])

		json.NewEncoder(w).Encode(map[string]string{"action_link": "https://auth/recover?token=abc"})
	}))
	defer server.Close()

	client := identity.NewClient("service-key", server.URL)
	link, err := client.GenerateRecoveryLink(context.Background(), "jane@x.com", "https://club/set-password")

	assert.NoError(t, err)
	assert.Equal(t, "https://auth/recover?token=abc", link)
}
