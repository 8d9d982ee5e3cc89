// ABOUTME: Database schema definitions
// ABOUTME: SQL for the local card mirror table and its indexes
package db

const schema = `
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    oracle_id TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL,
    type_line TEXT NOT NULL,
    oracle_text TEXT NOT NULL DEFAULT '',
    mana_cost TEXT NOT NULL DEFAULT '',
    cmc REAL NOT NULL DEFAULT 0,
    colors TEXT NOT NULL DEFAULT '[]',
    color_identity TEXT NOT NULL DEFAULT '[]',
    keywords TEXT NOT NULL DEFAULT '[]',
    power TEXT NOT NULL DEFAULT '',
    toughness TEXT NOT NULL DEFAULT '',
    loyalty TEXT NOT NULL DEFAULT '',
    set_code TEXT NOT NULL,
    set_name TEXT NOT NULL,
    rarity TEXT NOT NULL,
    collector_number TEXT NOT NULL,
    flavor_text TEXT NOT NULL DEFAULT '',
    artist TEXT NOT NULL DEFAULT '',
    layout TEXT NOT NULL DEFAULT '',
    legalities_json TEXT NOT NULL DEFAULT '{}',
    prices_json TEXT NOT NULL DEFAULT '{}',
    imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name);
CREATE INDEX IF NOT EXISTS idx_cards_oracle ON cards(oracle_id);
CREATE INDEX IF NOT EXISTS idx_cards_set ON cards(set_code, collector_number);
`
