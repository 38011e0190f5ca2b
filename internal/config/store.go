package config

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/rafael/certificate-automator/internal/workspace"
)

var numericOrgID = regexp.MustCompile(`^[0-9]+$`)

// SaveResult reports the outcome of a configuration save. Message is
// user-facing and written in Brazilian Portuguese; it is shown verbatim in
// whatever surface triggered the save.
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Store loads and saves the configuration over a Properties backend. Reads
// hand out immutable Settings snapshots; concurrent HTTP handlers never share
// mutable configuration state.
type Store struct {
	props Properties

	mu      sync.Mutex
	current Settings
}

// NewStore wraps a Properties backend. Call Load before the first Snapshot.
func NewStore(props Properties) *Store {
	return &Store{props: props}
}

// Load reads every persisted key into the in-memory snapshot. Only schema
// keys are honored; keys absent from the backend keep their empty defaults.
func (s *Store) Load() error {
	persisted, err := s.props.GetAll()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	values := map[string]string{}
	for _, key := range schemaKeys {
		if v, ok := persisted[key]; ok {
			values[key] = v
		}
	}

	s.mu.Lock()
	s.current = settingsFromMap(values)
	s.mu.Unlock()

	if values[KeyControlSheetID] == "" {
		log.Printf("config: loaded settings, CONTROL_SHEET_ID not set")
	} else {
		log.Printf("config: loaded settings, CONTROL_SHEET_ID found")
	}
	return nil
}

// Snapshot returns the current settings by value.
func (s *Store) Snapshot() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Save validates a candidate configuration, persists it with a replace-all
// write, reloads, and verifies the control sheet id survived the round trip.
// It never panics; every failure mode is a SaveResult with Success false.
func (s *Store) Save(candidate map[string]string) SaveResult {
	cleaned := map[string]string{}
	for _, key := range schemaKeys {
		cleaned[key] = strings.TrimSpace(candidate[key])
	}

	// A full spreadsheet URL pasted into the sheet-id field is reduced to
	// its id rather than rejected.
	if strings.Contains(cleaned[KeyControlSheetID], "docs.google.com/spreadsheets/d/") {
		id, err := workspace.ExtractResourceID(cleaned[KeyControlSheetID], "")
		if err != nil {
			return SaveResult{
				Success: false,
				Message: "Erro: Não foi possível extrair o ID da Planilha de Controle da URL fornecida.",
			}
		}
		cleaned[KeyControlSheetID] = id
	}

	for _, key := range requiredKeys {
		if cleaned[key] == "" {
			return SaveResult{
				Success: false,
				Message: "Erro: Valor de configuração obrigatório ausente para " + key,
			}
		}
	}

	if cleaned[KeyOrganizationID] != "" && !numericOrgID.MatchString(cleaned[KeyOrganizationID]) {
		return SaveResult{
			Success: false,
			Message: "Erro: O ID da organização do LinkedIn deve ser numérico.",
		}
	}

	// Drop empty optional keys so the backend only holds meaningful pairs.
	persist := map[string]string{}
	for key, value := range cleaned {
		if value != "" {
			persist[key] = value
		}
	}

	if err := s.props.ReplaceAll(persist); err != nil {
		log.Printf("config: save failed: %v", err)
		return SaveResult{Success: false, Message: "Erro ao salvar configuração: " + err.Error()}
	}

	if err := s.Load(); err != nil {
		log.Printf("config: reload after save failed: %v", err)
		return SaveResult{Success: false, Message: "Erro ao salvar configuração: " + err.Error()}
	}

	if s.Snapshot().ControlSheetID == "" {
		return SaveResult{
			Success: false,
			Message: "Erro: A configuração foi salva, mas o CONTROL_SHEET_ID ainda está ausente após recarregar. Verifique os logs.",
		}
	}

	return SaveResult{Success: true, Message: "Configuração salva com sucesso."}
}
