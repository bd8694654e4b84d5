package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKey(t *testing.T) {
	serve := func(t *testing.T, configuredKey string, headers map[string]string) (*httptest.ResponseRecorder, *bool) {
		t.Helper()

		next, called := okHandler()
		handler := APIKey(configuredKey)(next)

		req := httptest.NewRequest(http.MethodDelete, "/api/transactions/some-id", nil)
		for name, value := range headers {
			req.Header.Set(name, value)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w, called
	}

	t.Run("passes through when no key is configured", func(t *testing.T) {
		w, called := serve(t, "", nil)

		if !*called {
			t.Error("Expected next handler to be called")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("accepts the correct API key", func(t *testing.T) {
		w, called := serve(t, "secret-key", map[string]string{"X-API-Key": "secret-key"})

		if !*called {
			t.Error("Expected next handler to be called")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("rejects a wrong API key", func(t *testing.T) {
		w, called := serve(t, "secret-key", map[string]string{"X-API-Key": "wrong-key"})

		if *called {
			t.Error("Expected next handler not to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("rejects a missing key", func(t *testing.T) {
		w, called := serve(t, "secret-key", nil)

		if *called {
			t.Error("Expected next handler not to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("accepts a freshly generated time token", func(t *testing.T) {
		token, err := GenerateTimeToken("secret-key")
		if err != nil {
			t.Fatalf("GenerateTimeToken() returned unexpected error: %v", err)
		}

		w, called := serve(t, "secret-key", map[string]string{"X-API-Token": token})

		if !*called {
			t.Error("Expected next handler to be called")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("rejects a token minted for a different key", func(t *testing.T) {
		token, err := GenerateTimeToken("other-key")
		if err != nil {
			t.Fatalf("GenerateTimeToken() returned unexpected error: %v", err)
		}

		w, called := serve(t, "secret-key", map[string]string{"X-API-Token": token})

		if *called {
			t.Error("Expected next handler not to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		w, called := serve(t, "secret-key", map[string]string{"X-API-Token": "not-a-token"})

		if *called {
			t.Error("Expected next handler not to be called")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}
