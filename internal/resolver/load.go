package resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// AliasTable is the external alias export format: a JSON object mapping
// lowercased alias strings to canonical names. The canonical team set is the
// closed set of values in the table.
type AliasTable struct {
	Teams   []models.CanonicalTeam
	Aliases []models.Alias
}

// ParseAliasTable decodes the alias export payload and derives the canonical
// set from its values.
func ParseAliasTable(payload []byte, source string) (*AliasTable, error) {
	var raw map[string]string
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode alias table: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("alias table is empty")
	}

	canonicalSet := make(map[string]struct{}, len(raw))
	aliases := make([]models.Alias, 0, len(raw))

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		canonical := strings.TrimSpace(raw[key])
		if canonical == "" {
			continue
		}
		canonicalSet[canonical] = struct{}{}
		aliases = append(aliases, models.Alias{
			RawText:   key,
			Canonical: canonical,
			Source:    source,
		})
	}

	teams := make([]models.CanonicalTeam, 0, len(canonicalSet))
	for name := range canonicalSet {
		teams = append(teams, models.CanonicalTeam{Name: name})
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })

	return &AliasTable{Teams: teams, Aliases: aliases}, nil
}

// LoadAliasTable reads the alias export from disk.
func LoadAliasTable(path string) (*AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias table %s: %w", path, err)
	}
	return ParseAliasTable(data, path)
}
