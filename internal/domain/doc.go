// Package domain contains the core business entities of LexiLoop: catalog
// vocabulary, per-user mastery records, study sessions, streaks and weekly
// goals. Entities validate themselves and carry no infrastructure concerns.
package domain
