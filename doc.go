// Package endgame provides the value types shared by the retirement simulator:
// Money, Rate and the error kinds used by every other package.
//
// The simulator projects an individual's finances one calendar day at a time:
//   - Accounts: a bank account plus RIF, LIF, TFSA and non-registered
//     accounts, each layering its own tax consequences on the same primitive
//     operations (see package account).
//   - Taxes: a yearly federal return with a multi-year capital gain ledger and
//     a family of provincial returns (packages tax and tax/provincial).
//   - Transactions: dated actions matched against each simulated day
//     (packages schedule and sim).
//   - Driver: the day loop, year-end snapshots, survival draws and Monte
//     Carlo iterations (package sim).
//
// Scenarios are described in YAML or TOML files (package config) and run by
// the `endgame` command-line tool.
package endgame
