package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tonehub/internal/api"
	"tonehub/internal/app"
	"tonehub/internal/entitlement"
	"tonehub/internal/services"
)

func newUnlockCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <key>",
		Short: "Unlock downloads with an access key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd.Context(), func(rt *app.App) error {
				gate := rt.Gate()
				if gate.Authorized() {
					return reportEntitlement(cmd, ctx, gate.State(), "Downloads are already unlocked.")
				}
				err := gate.Verify(cmd.Context(), args[0])
				var verr *entitlement.VerifyError
				if errors.As(err, &verr) {
					return verr
				}
				return reportUnlock(cmd, ctx, gate.State(), err)
			})
		},
	}
}

func newConfirmPaymentCommand(ctx *commandContext) *cobra.Command {
	var payer, order string

	cmd := &cobra.Command{
		Use:   "confirm-payment",
		Short: "Record a completed checkout and unlock downloads",
		Long: `Record the checkout provider's success callback. The callback is trusted as
proof of payment; no further verification happens.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(payer) == "" {
				return errors.New("--payer is required")
			}
			return ctx.withRuntime(cmd.Context(), func(rt *app.App) error {
				err := rt.Gate().ConfirmPayment(cmd.Context(), entitlement.Payment{PayerName: payer, OrderID: order})
				return reportUnlock(cmd, ctx, rt.Gate().State(), err)
			})
		},
	}
	cmd.Flags().StringVar(&payer, "payer", "", "Payer name from the checkout callback")
	cmd.Flags().StringVar(&order, "order", "", "Order identifier from the checkout callback")
	return cmd
}

// reportUnlock prints the outcome of an unlock event. A persistence failure
// is a warning: the gate is open for this run.
func reportUnlock(cmd *cobra.Command, ctx *commandContext, state entitlement.State, err error) error {
	if err != nil && !errors.Is(err, services.ErrTransient) {
		return err
	}
	message := "Downloads unlocked."
	if err != nil {
		message = "Downloads unlocked for this session only; the unlock could not be saved."
	}
	return reportEntitlement(cmd, ctx, state, message)
}

func reportEntitlement(cmd *cobra.Command, ctx *commandContext, state entitlement.State, message string) error {
	if ctx.jsonOutput() {
		status := api.FromEntitlement(state)
		status.Message = message
		return writeJSON(cmd, status)
	}
	fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}
