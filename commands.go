package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/routes"
	"subaacare-server/internal/services"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			if err := models.Migrate(a.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Schema is up to date.")
			return nil
		},
	}
}

// createAdminCmd is the only way to obtain an ADMIN account; registration
// refuses the role.
func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()
			if err := models.Migrate(a.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			user, created, err := a.services(nil).Auth.CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("Created admin %s (%s)\n", user.Email, user.ID)
			} else {
				fmt.Printf("Admin %s already exists\n", user.Email)
			}
			return nil
		},
	}
	cmd.Flags().String("name", "Administrator", "Display name")
	cmd.Flags().String("email", "", "Login email")
	cmd.Flags().String("password", "", "Login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// seedCmd loads an approved demo physiotherapist with two open slots
// tomorrow, enough to exercise search and booking by hand.
func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()
			if a.cfg.IsProduction() {
				return errors.New("refusing to seed a production database")
			}
			if err := models.Migrate(a.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return seed(cmd.Context(), a.services(nil), a.log, email, password)
		},
	}
	cmd.Flags().String("email", "demo.physio@example.com", "Demo professional email")
	cmd.Flags().String("password", "demo123456", "Demo professional password")
	return cmd
}

func seed(ctx context.Context, svc routes.Services, log *zap.Logger, email, password string) error {
	specialties, location := "physiotherapy, sports rehabilitation", "Kochi"

	res, err := svc.Auth.Register(ctx, services.RegisterInput{
		Name:     "Demo Physiotherapist",
		Email:    email,
		Password: password,
		Role:     string(models.RoleProfessional),
		Profile:  services.ProfileInput{Specialties: specialties, Location: location},
	})
	if services.IsKind(err, services.KindConflict) {
		fmt.Printf("%s already exists, nothing to seed\n", email)
		return nil
	}
	if err != nil {
		return err
	}

	system := services.Caller{UserID: "seed", Role: models.RoleAdmin}
	if _, err := svc.Approval.Approve(ctx, system, res.Profile.ID); err != nil {
		return err
	}

	pro := services.Caller{UserID: res.User.ID, Role: models.RoleProfessional}
	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	for _, hour := range []int{9, 10} {
		start := day.Add(time.Duration(hour) * time.Hour)
		slot, err := svc.Availability.CreateSlot(ctx, pro, start, start.Add(time.Hour))
		if err != nil {
			return err
		}
		log.Info("seeded slot", zap.String("slotID", slot.ID), zap.Time("start", slot.Start))
	}
	fmt.Printf("Seeded %s (profile %s) with two slots on %s\n", email, res.Profile.ID, day.Format("2006-01-02"))
	return nil
}
