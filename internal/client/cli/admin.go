package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/codecredits/internal/client/notify"
)

func (a *App) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: admin users [page] | grant <user-id> <amount> | stats")
	}

	switch args[0] {
	case "users":
		page, err := pageArg(args, 1)
		if err != nil {
			return err
		}
		users, err := a.store.FetchUsers(ctx, a.page(page))
		if err != nil {
			return err
		}
		renderUsers(a.out, users)

	case "grant":
		if len(args) != 3 {
			return fmt.Errorf("usage: admin grant <user-id> <amount>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[1])
		}
		amount, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[2])
		}
		g, err := a.store.GrantCredits(ctx, id, amount)
		if err != nil {
			return err
		}
		notify.Success(a.notifier, "%s (now %s)", g.Message, formatCredits(g.CurrentCredits))

	case "stats":
		st, err := a.store.FetchPaymentStatistics(ctx)
		if err != nil {
			return err
		}
		renderStats(a.out, st)

	default:
		return fmt.Errorf("unknown admin command %q", args[0])
	}
	return nil
}
