// Package data embeds the default restaurant, menu and account datasets.
package data

import "embed"

// Files holds restaurants.json, menus.json, accounts.json and the search
// evaluation set golden_queries.json.
//
//go:embed *.json
var Files embed.FS

const (
	RestaurantsFile = "restaurants.json"
	MenusFile       = "menus.json"
	AccountsFile    = "accounts.json"
	GoldenQueries   = "golden_queries.json"
)
