package classify

import "newsbot/internal/model"

// Entry couples a branch with its macro-domain, the keywords used by the
// lexical tier, and the description text embedded by the semantic tier.
type Entry struct {
	Macro       string
	Branch      string
	Keywords    []string
	Description string
}

// Taxonomy returns the category table in its canonical order. The lexical
// tier takes the first entry whose keyword appears in the text, so this
// declaration order is the tie-break between overlapping keyword sets and
// must stay fixed.
func Taxonomy() []Entry {
	return []Entry{
		{
			Macro:       "Ingegneria",
			Branch:      "Automazione",
			Keywords:    []string{"robot", "automation", "automazione", "plc", "drone", "mechatronic"},
			Description: "industrial automation plc control systems mechatronics factory robotics drones",
		},
		{
			Macro:       "Ingegneria",
			Branch:      "Elettronica",
			Keywords:    []string{"electronic", "semiconductor", "chip", "circuit", "elettronica", "transistor"},
			Description: "electronics semiconductors integrated circuits chips embedded hardware transistors",
		},
		{
			Macro:       "Ingegneria",
			Branch:      "Meccanica",
			Keywords:    []string{"mechanical", "meccanica", "turbine", "gearbox", "hydraulic"},
			Description: "mechanical engineering turbines engines hydraulics manufacturing machinery",
		},
		{
			Macro:       "Ingegneria",
			Branch:      "Biotecnologie",
			Keywords:    []string{"biotech", "crispr", "genome", "bioreactor", "biotecnologie"},
			Description: "biotechnology gene editing crispr genomics synthetic biology bioreactors",
		},
		{
			Macro:       "Ingegneria",
			Branch:      "Nanoelettronica",
			Keywords:    []string{"nano", "graphene", "quantum dot", "nanoelettronica"},
			Description: "nanotechnology nanoelectronics graphene quantum dots advanced materials",
		},
		{
			Macro:       "Finanza",
			Branch:      "Mercati",
			Keywords:    []string{"market", "stock", "borsa", "trading", "nasdaq"},
			Description: "financial markets stock exchanges trading indexes equities",
		},
		{
			Macro:       "Finanza",
			Branch:      "Investimenti",
			Keywords:    []string{"invest", "fund", "venture", "etf", "portfolio"},
			Description: "investments funds venture capital portfolios asset management",
		},
		{
			Macro:       "Finanza",
			Branch:      "Criptovalute",
			Keywords:    []string{"crypto", "bitcoin", "ethereum", "blockchain", "stablecoin"},
			Description: "cryptocurrencies bitcoin ethereum blockchain tokens decentralized finance",
		},
		{
			Macro:       "Politica",
			Branch:      "Internazionale",
			Keywords:    []string{"diplomacy", "geopolit", "united nations", "foreign policy", "sanction"},
			Description: "international politics diplomacy geopolitics foreign policy united nations",
		},
		{
			Macro:       "Politica",
			Branch:      "Locale",
			Keywords:    []string{"municipal", "city council", "local government", "comune", "sindaco"},
			Description: "local politics municipal government city councils regional administration",
		},
		{
			Macro:       "Politica",
			Branch:      "Europea",
			Keywords:    []string{"european union", "brussels", " eu ", "eurozone", "parlamento europeo"},
			Description: "european union politics brussels eu parliament eurozone policy",
		},
	}
}

// Macros returns the macro-domain names in taxonomy order, without
// duplicates and with the fallback macro last.
func Macros() []string {
	var macros []string
	seen := make(map[string]struct{})
	for _, e := range Taxonomy() {
		if _, ok := seen[e.Macro]; ok {
			continue
		}
		seen[e.Macro] = struct{}{}
		macros = append(macros, e.Macro)
	}
	return append(macros, model.MacroDefault)
}

// Branches returns the branch names of a macro in taxonomy order. The
// fallback macro has the single fallback branch and no keywords.
func Branches(macro string) []string {
	if macro == model.MacroDefault {
		return []string{model.BranchDefault}
	}
	var branches []string
	for _, e := range Taxonomy() {
		if e.Macro == macro {
			branches = append(branches, e.Branch)
		}
	}
	return branches
}

// AllBranches returns every branch name in taxonomy order, fallback last.
func AllBranches() []string {
	var branches []string
	for _, e := range Taxonomy() {
		branches = append(branches, e.Branch)
	}
	return append(branches, model.BranchDefault)
}

// IsMacro reports whether the name is a known macro-domain.
func IsMacro(name string) bool {
	for _, m := range Macros() {
		if m == name {
			return true
		}
	}
	return false
}

// IsBranch reports whether the name is a known branch.
func IsBranch(name string) bool {
	for _, b := range AllBranches() {
		if b == name {
			return true
		}
	}
	return false
}
