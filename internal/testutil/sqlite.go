// Package testutil provides an in-memory SQLite database carrying the same
// tables as the MySQL migrations, for repository and service tests.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE gestores (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nome TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  senha TEXT NOT NULL,
  cargo TEXT NULL,
  departamento TEXT NULL,
  nivel_acesso TEXT NOT NULL DEFAULT 'admin',
  ativo BOOLEAN NOT NULL DEFAULT 1,
  ultimo_login DATETIME NULL,
  senha_temporaria BOOLEAN NOT NULL DEFAULT 0,
  token_convite TEXT NULL,
  token_expira DATETIME NULL,
  tentativas_login INTEGER NOT NULL DEFAULT 0,
  bloqueado BOOLEAN NOT NULL DEFAULT 0,
  bloqueado_ate DATETIME NULL,
  criado_por INTEGER NULL,
  data_criacao DATETIME NOT NULL
);

CREATE TABLE ocorrencias (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  codigo TEXT NOT NULL UNIQUE,
  tipo TEXT NOT NULL,
  descricao TEXT NOT NULL,
  endereco TEXT NOT NULL,
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  nome_cidadao TEXT NOT NULL,
  email_cidadao TEXT NULL,
  status TEXT NOT NULL DEFAULT 'pendente',
  observacoes TEXT NULL,
  foto TEXT NULL,
  gestor_id INTEGER NULL,
  data_criacao DATETIME NOT NULL,
  data_atualizacao DATETIME NULL
);

CREATE TABLE contatos (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nome TEXT NOT NULL,
  email TEXT NOT NULL,
  assunto TEXT NOT NULL,
  mensagem TEXT NOT NULL,
  ip_origem TEXT NOT NULL,
  user_agent TEXT NULL,
  data_envio DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'novo'
);

CREATE TABLE admin_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  admin_id INTEGER NOT NULL,
  acao TEXT NOT NULL,
  detalhes TEXT NULL,
  ip_address TEXT NULL,
  user_agent TEXT NULL,
  data_criacao DATETIME NOT NULL
);
`

// OpenDB returns a fresh in-memory database that is closed when the test
// ends. A single connection keeps every query on the same memory database.
func OpenDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}
