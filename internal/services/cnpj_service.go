// internal/services/cnpj_service.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/taot23/aetlicencas/internal/config"
)

// CNPJService queries the Portal da Transparência company registry to
// prefill transporter data from a CNPJ.
type CNPJService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// CNPJCompany is the subset of the registry payload the service uses.
type CNPJCompany struct {
	CNPJ      string `json:"cnpj"`
	Name      string `json:"razaoSocial"`
	TradeName string `json:"nomeFantasia"`
	City      string `json:"municipio"`
	State     string `json:"uf"`
}

func NewCNPJService(cfg config.CNPJConfig) *CNPJService {
	return &CNPJService{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup fetches the registry record for cnpj (14 digits, unformatted).
func (s *CNPJService) Lookup(cnpj string) (*CNPJCompany, error) {
	endpoint := fmt.Sprintf("%s/cnpj?cnpj=%s", s.baseURL, url.QueryEscape(cnpj))

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build CNPJ request: %w", err)
	}
	req.Header.Set("chave-api-dados", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CNPJ lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("CNPJ lookup returned status %d: %s", resp.StatusCode, string(body))
	}

	var company CNPJCompany
	if err := json.NewDecoder(resp.Body).Decode(&company); err != nil {
		return nil, fmt.Errorf("failed to decode CNPJ response: %w", err)
	}

	return &company, nil
}
