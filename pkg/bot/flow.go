package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/ninja0404/pump-swap-bot/pkg/session"
	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// skipWord lets users leave an optional field empty.
const skipWord = "skip"

func (d *Dispatcher) startCreateFlow(userID int64) string {
	d.sessions.Put(userID, session.State{Step: session.StepName})
	return "Let's create a token. What is the token name? (max 32 characters)\nSend \"cancel\" at any point to abort."
}

// continueCreateFlow advances the creation flow one step per message.
// Each answer lands in the session draft; the final confirmation builds
// the launch request.
func (d *Dispatcher) continueCreateFlow(ctx context.Context, userID int64, state session.State, text string) string {
	input := strings.TrimSpace(text)

	switch state.Step {
	case session.StepName:
		state.Draft.Name = input
		state.Step = session.StepSymbol
		d.sessions.Put(userID, state)
		return "Token symbol? (max 8 characters)"

	case session.StepSymbol:
		state.Draft.Symbol = input
		state.Step = session.StepDescription
		d.sessions.Put(userID, state)
		return "Description? (max 200 characters)"

	case session.StepDescription:
		state.Draft.Description = input
		state.Step = session.StepImageURL
		d.sessions.Put(userID, state)
		return "Image URL?"

	case session.StepImageURL:
		state.Draft.ImageURL = input
		state.Step = session.StepTelegramLink
		d.sessions.Put(userID, state)
		return fmt.Sprintf("Telegram link? (or %q)", skipWord)

	case session.StepTelegramLink:
		if !strings.EqualFold(input, skipWord) {
			state.Draft.TelegramLink = input
		}
		state.Step = session.StepTwitterLink
		d.sessions.Put(userID, state)
		return fmt.Sprintf("Twitter link? (or %q)", skipWord)

	case session.StepTwitterLink:
		if !strings.EqualFold(input, skipWord) {
			state.Draft.TwitterLink = input
		}

		// Validate the draft before asking which wallet pays for it.
		if vr := d.trader.ValidateTokenMetadata(state.Draft); !vr.IsValid {
			d.sessions.Delete(userID)
			return "Metadata is invalid:\n- " + strings.Join(vr.Errors, "\n- ") + "\n\nSend \"create\" to start over."
		}
		state.Step = session.StepWallet
		d.sessions.Put(userID, state)
		return "Which wallet ID should create the token? (see \"wallets\")"

	case session.StepWallet:
		if _, err := d.wallets.Get(ctx, userID, input); err != nil {
			return fmt.Sprintf("Wallet %q not found. Which wallet ID should create the token?", input)
		}
		state.WalletID = input
		state.Step = session.StepConfirm
		d.sessions.Put(userID, state)
		return renderDraft(state.Draft) + "\n\nCreate this token? (yes/no)"

	case session.StepConfirm:
		d.sessions.Delete(userID)
		if !strings.EqualFold(input, "yes") && !strings.EqualFold(input, "y") {
			return "Token creation cancelled."
		}

		result, err := d.trader.CreateToken(ctx, types.CreateTokenRequest{
			Metadata: state.Draft,
			UserID:   userID,
			WalletID: state.WalletID,
		})
		if err != nil {
			d.log.Warn().Err(err).Int64("user_id", userID).Msg("token creation failed")
			return renderError(err)
		}
		return renderResult("Token created", result)

	default:
		d.sessions.Delete(userID)
		return usageText
	}
}
