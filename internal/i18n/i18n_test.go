//go:build !integration

package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetTranslator_ReturnsSingleton(t *testing.T) {
	first := GetTranslator()
	second := GetTranslator()

	assert.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestTranslator_Translate(t *testing.T) {
	translator := NewTranslator()

	tests := []struct {
		name   string
		key    string
		locale string
		want   string
	}{
		{name: "english error", key: ErrKeyInvalidRequest, locale: "en", want: "Invalid request"},
		{name: "portuguese error", key: ErrKeyInvalidRequest, locale: "pt", want: "Requisição inválida"},
		{name: "dutch error", key: ErrKeyInvalidRequest, locale: "nl", want: "Ongeldig verzoek"},
		{name: "english user message", key: ErrKeyUserNotFound, locale: "en", want: "User not found"},
		{name: "portuguese user message", key: ErrKeyUserNotFound, locale: "pt", want: "Usuário não encontrado"},
		{name: "dutch success message", key: SuccessKeyUserCreated, locale: "nl", want: "Gebruiker succesvol aangemaakt"},
		{name: "empty locale uses default", key: ErrKeyInvalidRequest, locale: "", want: "Invalid request"},
		{name: "unsupported locale uses default", key: ErrKeyInvalidRequest, locale: "fr", want: "Invalid request"},
		{name: "unknown key passes through", key: "unknown.key", locale: "en", want: "unknown.key"},
		{name: "unknown key in unsupported locale passes through", key: "unknown.key", locale: "fr", want: "unknown.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translator.Translate(tt.key, tt.locale))
		})
	}
}

func TestGetLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		acceptLanguage string
		want           string
	}{
		{name: "missing header", acceptLanguage: "", want: DefaultLocale},
		{name: "bare language tag", acceptLanguage: "pt", want: "pt"},
		{name: "dutch", acceptLanguage: "nl", want: "nl"},
		{name: "region subtag stripped", acceptLanguage: "en-US", want: "en"},
		{name: "first of several candidates wins", acceptLanguage: "en-US,en;q=0.9,pt;q=0.8", want: "en"},
		{name: "quality factor ignored", acceptLanguage: "pt;q=0.5", want: "pt"},
		{name: "unsupported language falls back", acceptLanguage: "fr", want: DefaultLocale},
		{name: "uppercase tag normalized", acceptLanguage: "EN", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptLanguage != "" {
				c.Request.Header.Set(AcceptLanguageHeader, tt.acceptLanguage)
			}

			assert.Equal(t, tt.want, GetLocale(c))
		})
	}
}
