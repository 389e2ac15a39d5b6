package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/utils"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

func TestStaffLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.authService()
	admin := e.addGestor(t, "Carlos Nunes", "carlos@prefeitura.gov.br", "segredo123", model.RoleAdmin)

	res, err := a.Login(ctx, Credentials{Email: "Carlos@Prefeitura.gov.br", Senha: "segredo123"}, "10.0.0.1", "test")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, model.RoleAdmin, res.Session.Role)
	assert.Equal(t, admin.UserID, res.Session.UserID)
	assert.Zero(t, e.sleeps)

	stored, err := e.sessions.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, stored.Actor().UserID)

	_, err = a.Login(ctx, Credentials{Usuario: "Carlos Nunes", Senha: "segredo123"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	g, err := e.gestores.GetByID(ctx, admin.UserID)
	require.NoError(t, err)
	require.NotNil(t, g.UltimoLogin)
	assert.True(t, g.UltimoLogin.Equal(base))

	logs, err := e.logs.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AcaoLogin, logs[0].Acao)

	require.NoError(t, a.Logout(ctx, res.ID))
	_, err = e.sessions.Get(ctx, res.ID)
	assert.Error(t, err)
}

func TestStaffLoginFailuresLockAccountForAWhile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.authService()
	carlos := e.addGestor(t, "Carlos", "carlos@prefeitura.gov.br", "segredo123", model.RoleAdmin)
	bad := Credentials{Email: "carlos@prefeitura.gov.br", Senha: "errada"}
	good := Credentials{Email: "carlos@prefeitura.gov.br", Senha: "segredo123"}

	for i := 0; i < 5; i++ {
		_, err := a.Login(ctx, bad, "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, 5, e.sleeps)

	g, err := e.gestores.GetByID(ctx, carlos.UserID)
	require.NoError(t, err)
	assert.True(t, g.Bloqueado)
	require.NotNil(t, g.BloqueadoAte)
	assert.True(t, g.BloqueadoAte.Equal(base.Add(15*time.Minute)))

	// The right password is refused, with the same error and delay, while locked.
	e.now = base.Add(14 * time.Minute)
	_, err = a.Login(ctx, good, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 6, e.sleeps)

	// Once the lock expires the counter starts over.
	e.now = base.Add(16 * time.Minute)
	_, err = a.Login(ctx, bad, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	g, err = e.gestores.GetByID(ctx, carlos.UserID)
	require.NoError(t, err)
	assert.False(t, g.Bloqueado)
	assert.Equal(t, 1, g.TentativasLogin)

	res, err := a.Login(ctx, good, "", "")
	require.NoError(t, err)
	assert.Equal(t, carlos.UserID, res.Session.UserID)
	g, err = e.gestores.GetByID(ctx, carlos.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, g.TentativasLogin)
	assert.Nil(t, g.BloqueadoAte)

	_, err = a.Login(ctx, Credentials{Email: "ninguem@prefeitura.gov.br", Senha: "x"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetUnlocksAccount(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.authService()
	root := e.addGestor(t, "Maria", "maria@prefeitura.gov.br", "segredo123", model.RoleSuperAdmin)
	carlos := e.addGestor(t, "Carlos", "carlos@prefeitura.gov.br", "segredo123", model.RoleAdmin)
	for i := 0; i < 5; i++ {
		_, _ = a.Login(ctx, Credentials{Email: carlos.Email, Senha: "errada"}, "", "")
	}

	creds, err := e.gestorService().ResetPassword(ctx, root, carlos.UserID)
	require.NoError(t, err)
	assert.False(t, creds.Gestor.Bloqueado)
	assert.Nil(t, creds.Gestor.BloqueadoAte)
	assert.True(t, creds.Gestor.SenhaTemporaria)

	res, err := a.Login(ctx, Credentials{Email: carlos.Email, Senha: creds.SenhaTemporaria}, "", "")
	require.NoError(t, err)
	assert.True(t, res.SenhaTemporaria)
}

func TestCitizenLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.authService()
	o, err := e.ocorrenciaService().Create(ctx, validNova(), nil)
	require.NoError(t, err)

	res, err := a.Login(ctx, Credentials{Email: "ANA@example.com", Codigo: " " + o.Codigo + " "}, "", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCitizen, res.Session.Role)
	assert.Equal(t, "ana@example.com", res.Session.Email)
	assert.Equal(t, "Ana", res.Session.Nome)

	_, err = a.Login(ctx, Credentials{Email: "bia@example.com", Codigo: o.Codigo}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, e.sleeps)

	var verr *validation.Error
	_, err = a.Login(ctx, Credentials{Email: "ana@example.com"}, "", "")
	assert.ErrorAs(t, err, &verr)
	_, err = a.Login(ctx, Credentials{Senha: "x"}, "", "")
	assert.ErrorAs(t, err, &verr)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.authService()
	admin := e.addGestor(t, "Carlos", "carlos@prefeitura.gov.br", "segredo123", model.RoleAdmin)

	assert.ErrorIs(t, a.ChangePassword(ctx, citizen, "a", "novasenha1"), ErrForbidden)
	var verr *validation.Error
	assert.ErrorAs(t, a.ChangePassword(ctx, admin, "segredo123", "curta"), &verr)
	assert.ErrorIs(t, a.ChangePassword(ctx, admin, "errada", "novasenha1"), ErrInvalidCredentials)
	require.NoError(t, a.ChangePassword(ctx, admin, "segredo123", "novasenha1"))

	_, err := a.Login(ctx, Credentials{Email: admin.Email, Senha: "novasenha1"}, "", "")
	assert.NoError(t, err)
}

func TestAcceptInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.authService()
	root := e.addGestor(t, "Maria", "maria@prefeitura.gov.br", "segredo123", model.RoleSuperAdmin)

	creds, err := e.gestorService().Create(ctx, root, NovoGestor{Nome: "Paulo", Email: "paulo@prefeitura.gov.br"})
	require.NoError(t, err)
	require.True(t, creds.Gestor.SenhaTemporaria)
	require.NotEmpty(t, creds.Convite.Token)

	_, err = a.AcceptInvite(ctx, "garbage", "novasenha1", "", "")
	assert.ErrorIs(t, err, utils.ErrInvalidInvite)

	e.now = time.Now().UTC()
	g, err := a.AcceptInvite(ctx, creds.Convite.Token, "novasenha1", "", "")
	require.NoError(t, err)
	assert.False(t, g.SenhaTemporaria)
	assert.Empty(t, g.TokenConvite)

	_, err = a.Login(ctx, Credentials{Email: "paulo@prefeitura.gov.br", Senha: "novasenha1"}, "", "")
	require.NoError(t, err)

	_, err = a.AcceptInvite(ctx, creds.Convite.Token, "outrasenha1", "", "")
	assert.ErrorIs(t, err, utils.ErrInvalidInvite)
}
