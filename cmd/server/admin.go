package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/utils"
)

// newCreateAdminCommand bootstraps the first super admin, which the API
// cannot do since creating staff requires one.
func newCreateAdminCommand() *cobra.Command {
	var nome, email, senha string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a super admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if nome == "" || email == "" {
				return fmt.Errorf("--nome and --email are required")
			}
			a, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer a.close()

			temporaria := senha == ""
			if temporaria {
				if senha, err = utils.TemporaryPassword(12); err != nil {
					return err
				}
			} else if len([]rune(senha)) < 8 {
				return fmt.Errorf("--senha must have at least 8 characters")
			}
			hash, err := utils.HashPassword(senha, a.cfg.BcryptCost)
			if err != nil {
				return err
			}
			g := model.Gestor{
				Nome:            nome,
				Email:           email,
				SenhaHash:       hash,
				NivelAcesso:     model.RoleSuperAdmin,
				Ativo:           true,
				SenhaTemporaria: temporaria,
				DataCriacao:     time.Now().UTC(),
			}
			if err := repository.NewGestorRepo(a.db).Create(cmd.Context(), &g); err != nil {
				return err
			}
			a.log.WithFields(map[string]any{"id": g.ID, "email": g.Email}).Info("super admin created")
			if temporaria {
				fmt.Fprintf(cmd.OutOrStdout(), "senha temporária: %s\n", senha)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&nome, "nome", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&senha, "senha", "", "password (generated when empty)")
	return cmd
}
