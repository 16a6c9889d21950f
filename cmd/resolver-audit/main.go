// Package main provides an alias-table maintenance tool: it surfaces
// collision decisions and suggests canonical matches for unresolved names.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/logger"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/resolver"
)

var (
	aliasPath  string
	nonMembers []string

	index *resolver.AliasIndex
	teams *resolver.TeamResolver
)

var rootCmd = &cobra.Command{
	Use:   "resolver-audit",
	Short: "Audit the team alias table",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolver.LoadAliasTable(aliasPath)
		if err != nil {
			return fmt.Errorf("failed to load alias table: %w", err)
		}
		index, err = resolver.BuildIndex(table.Teams, table.Aliases, resolver.IndexOptions{
			Logger: logger.NewLogger("warn"),
		})
		if err != nil {
			return fmt.Errorf("failed to build alias index: %w", err)
		}
		teams = resolver.NewTeamResolver(index, resolver.ResolverOptions{NonMembers: nonMembers})
		return nil
	},
}

var collisionsCmd = &cobra.Command{
	Use:   "collisions",
	Short: "List alias keys claimed by more than one canonical team",
	Run: func(cmd *cobra.Command, args []string) {
		collisions := index.Collisions()
		if len(collisions) == 0 {
			fmt.Println("No collisions.")
			return
		}
		for _, c := range collisions {
			fmt.Printf("%s -> %s (%s; rejected: %s)\n",
				c.Key, c.Chosen, c.Reason, strings.Join(c.Rejected, ", "))
		}
		fmt.Printf("\n%d collision(s) across %d indexed entries\n", len(collisions), index.Size())
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [names...]",
	Short: "Resolve names and suggest candidates for misses",
	Long: `Resolves each name through the full strategy chain. Names may be passed
as arguments or piped one per line on stdin. Unresolved names get fuzzy
suggestions to seed alias-table additions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if name := strings.TrimSpace(scanner.Text()); name != "" {
					names = append(names, name)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read names: %w", err)
			}
		}
		if len(names) == 0 {
			return fmt.Errorf("no names to resolve")
		}

		threshold, _ := cmd.Flags().GetFloat64("threshold")
		limit, _ := cmd.Flags().GetInt("limit")
		suggester := resolver.NewSuggester(index, threshold)

		for _, name := range names {
			res := teams.Resolve(name)
			if res.Matched() {
				fmt.Printf("%-40s %-16s %s\n", name, res.Method, res.Canonical)
				continue
			}
			fmt.Printf("%-40s %-16s\n", name, res.Method)
			for _, s := range suggester.Suggest(name, limit) {
				fmt.Printf("    candidate: %-30s score %.3f\n", s.Canonical, s.Score)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&aliasPath, "aliases", "a", "data/aliases.json", "Path to alias table JSON")
	rootCmd.PersistentFlags().StringSliceVar(&nonMembers, "non-members", nil, "Known non-member names to exclude")
	resolveCmd.Flags().Float64("threshold", 0.85, "Minimum similarity for suggestions")
	resolveCmd.Flags().Int("limit", 3, "Maximum suggestions per unresolved name")
	rootCmd.AddCommand(collisionsCmd, resolveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
