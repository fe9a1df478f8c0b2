package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/angelmondragon/caraccessories-storefront/internal/app"
	"github.com/angelmondragon/caraccessories-storefront/internal/cart"
	"github.com/angelmondragon/caraccessories-storefront/internal/checkout"
	"github.com/angelmondragon/caraccessories-storefront/pkg/config"
	"github.com/angelmondragon/caraccessories-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/shopspring/decimal"
)

const usage = `usage: storefront <command> [flags]

commands:
  login -user NAME -password SECRET
  register -name NAME -password SECRET [-email E] [-phone P] [-street S] [-city C] [-state S] [-zip Z]
  logout
  whoami
  products [ID]
  cart [show | add ID | remove ID | qty ID N | clear]
  checkout [-method card|eft] [-bank NAME]
  orders [ID]
  last-order [-clear]
  admin products | delete-product ID | pending | orders | users | delete-user ID
  admin add-product -name N -brand B -category C -size S -material M -price P -stock Q -description D -file PATH`

// errUsage marks argument mistakes; run prints the usage text for them.
var errUsage = errors.New("invalid arguments")

type command func(ctx context.Context, a *app.App, args []string, out io.Writer) error

var commands = map[string]command{
	"login":      cmdLogin,
	"register":   cmdRegister,
	"logout":     cmdLogout,
	"whoami":     cmdWhoami,
	"products":   cmdProducts,
	"cart":       cmdCart,
	"checkout":   cmdCheckout,
	"orders":     cmdOrders,
	"last-order": cmdLastOrder,
	"admin":      cmdAdmin,
}

// run executes one command against the persisted session and returns the
// process exit code. Each invocation is a fresh page load: the stored
// session and cart are restored before the command runs.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s\n", args[0], usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      "console",
		Output:      stderr,
	})

	a, err := app.New(ctx, app.Options{Config: cfg, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to open storefront", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logg.Error(context.Background(), "error closing storefront", err)
		}
	}()
	a.Start(ctx)

	if err := cmd(ctx, a, args[1:], stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%v\n\n%s\n", err, usage)
			return 2
		}
		fmt.Fprintln(stderr, pkgerrors.UserMessage(err))
		return 1
	}
	return 0
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return usageError("%s: %v", fs.Name(), err)
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdLogin(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	user := fs.String("user", "", "username or email")
	password := fs.String("password", "", "password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *user == "" || *password == "" {
		return usageError("login needs -user and -password")
	}
	profile, err := a.Auth.Login(ctx, *user, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "logged in as %s (%s)\n", displayName(*profile), profile.Role)
	return nil
}

func cmdRegister(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var req types.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.Contact.Email, "email", "", "email")
	fs.StringVar(&req.Contact.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&req.Address.Street, "street", "", "street")
	fs.StringVar(&req.Address.City, "city", "", "city")
	fs.StringVar(&req.Address.State, "state", "", "province or state")
	fs.StringVar(&req.Address.ZipCode, "zip", "", "postal code")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	res, err := a.Auth.Register(ctx, req)
	if err != nil {
		return err
	}
	msg := res.Message
	if msg == "" {
		msg = "registered; log in to continue"
	}
	fmt.Fprintln(out, msg)
	return nil
}

func cmdLogout(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	a.Auth.Logout(ctx)
	fmt.Fprintln(out, "logged out")
	return nil
}

func cmdWhoami(_ context.Context, a *app.App, _ []string, out io.Writer) error {
	user := a.Auth.CurrentUser()
	if user == nil {
		fmt.Fprintln(out, "not logged in")
		return nil
	}
	fmt.Fprintf(out, "%s (%s)\n", displayName(*user), user.Role)
	if addr := user.ShippingAddress(); addr != "" {
		fmt.Fprintf(out, "ships to: %s\n", addr)
	}
	if exp := a.Auth.TokenExpiry(); exp != nil {
		fmt.Fprintf(out, "token expires: %s\n", exp.Format("2006-01-02 15:04"))
	}
	return nil
}

func displayName(u types.UserProfile) string {
	if name := u.ContactName(); name != "" {
		return name
	}
	return u.Identity().String()
}

func cmdProducts(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 1 {
		p, err := a.Client.Product(ctx, types.ID(args[0]))
		if err != nil {
			return err
		}
		return printJSON(out, p)
	}
	products, err := a.Client.Products(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Ref(), p.Name, p.Brand, p.Price.StringFixed(2))
	}
	return tw.Flush()
}

func cmdCart(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "show":
	case "add":
		if len(args) != 1 {
			return usageError("cart add needs a product id")
		}
		if _, err := a.Shop.AddToCart(ctx, types.ID(args[0])); err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeDependency) {
				_ = printCart(out, a.Cart.Lines(), a.Checkout.Quote())
			}
			return err
		}
	case "remove":
		if len(args) != 1 {
			return usageError("cart remove needs a product id")
		}
		a.Cart.RemoveFromCart(ctx, types.ID(args[0]))
	case "qty":
		if len(args) != 2 {
			return usageError("cart qty needs a product id and a quantity")
		}
		if _, ok := a.Cart.UpdateQuantity(ctx, types.ID(args[0]), args[1]); !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
		}
	case "clear":
		a.Cart.Clear(ctx)
	default:
		return usageError("unknown cart command %q", sub)
	}
	return printCart(out, a.Cart.Lines(), a.Checkout.Quote())
}

func printCart(out io.Writer, lines []cart.Line, q checkout.Quote) error {
	if len(lines) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ProductRef, l.Name, l.Quantity, l.Price.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t%d\tsubtotal\t%s\n", q.ItemCount, q.Subtotal.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\tdelivery\t%s\n", q.DeliveryFee.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\tvat\t%s\n", q.VAT.StringFixed(2))
	fmt.Fprintf(tw, "\t\t\ttotal\t%s\n", q.GrandTotal.StringFixed(2))
	return tw.Flush()
}

func cmdCheckout(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	method := fs.String("method", string(enums.PaymentMethodCard), "card or eft")
	bank := fs.String("bank", "", "bank name for eft")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	h := a.Checkout.NewHandoff()
	order, err := h.Submit(ctx, checkout.SubmitInput{
		PaymentMethod: enums.PaymentMethod(strings.ToLower(*method)),
		BankName:      *bank,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "order %s placed\n", h.OrderNumber())
	return printJSON(out, order)
}

func cmdOrders(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 1 {
		order, err := a.Orders.Get(ctx, types.ID(args[0]))
		if err != nil {
			return err
		}
		return printJSON(out, order)
	}
	orders, err := a.Orders.History(ctx)
	if err != nil {
		return err
	}
	return printOrders(out, orders)
}

func printOrders(out io.Writer, orders []types.Order) error {
	if len(orders) == 0 {
		fmt.Fprintln(out, "no orders")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tSTATUS\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.DisplayNumber(), o.OrderDate, o.Status, len(o.Lines()), o.GrandTotal.StringFixed(2))
	}
	return tw.Flush()
}

func cmdLastOrder(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("last-order", flag.ContinueOnError)
	forget := fs.Bool("clear", false, "forget the last order")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *forget {
		a.Checkout.ClearLastOrder(ctx)
		fmt.Fprintln(out, "last order cleared")
		return nil
	}
	order, ok := a.Checkout.LastOrder(ctx)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no recent order")
	}
	return printJSON(out, a.Orders.Refresh(ctx, *order))
}

func cmdAdmin(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("admin needs a subcommand")
	}
	sub, rest := args[0], args[1:]
	needID := func() (types.ID, error) {
		if len(rest) != 1 {
			return "", usageError("admin %s needs an id", sub)
		}
		return types.ID(rest[0]), nil
	}

	switch sub {
	case "add-product":
		return cmdAddProduct(ctx, a, rest, out)
	case "products":
		products, err := a.Admin.ListProducts(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, products)
	case "delete-product":
		id, err := needID()
		if err != nil {
			return err
		}
		if err := a.Admin.DeleteProduct(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "product %s deleted\n", id)
		return nil
	case "pending":
		orders, err := a.Admin.ListPendingOrders(ctx)
		if err != nil {
			return err
		}
		return printOrders(out, orders)
	case "orders":
		orders, err := a.Admin.ListOrders(ctx)
		if err != nil {
			return err
		}
		return printOrders(out, orders)
	case "users":
		users, err := a.Admin.ListUsers(ctx)
		if err != nil {
			return err
		}
		sort.SliceStable(users, func(i, j int) bool { return users[i].Name < users[j].Name })
		return printJSON(out, users)
	case "delete-user":
		id, err := needID()
		if err != nil {
			return err
		}
		if err := a.Admin.DeleteUser(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "user %s deleted\n", id)
		return nil
	default:
		return usageError("unknown admin command %q", sub)
	}
}

func cmdAddProduct(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add-product", flag.ContinueOnError)
	var upload types.ProductUpload
	fs.StringVar(&upload.Name, "name", "", "product name")
	fs.StringVar(&upload.Brand, "brand", "", "brand")
	fs.StringVar(&upload.Category, "category", "", "category")
	fs.StringVar(&upload.Size, "size", "", "size")
	fs.StringVar(&upload.Material, "material", "", "material")
	fs.StringVar(&upload.Description, "description", "", "description")
	fs.IntVar(&upload.StockQuantity, "stock", 0, "units in stock")
	price := fs.String("price", "", "unit price")
	file := fs.String("file", "", "image to upload")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *price != "" {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return usageError("add-product: invalid -price %q", *price)
		}
		upload.Price = types.NewMoney(d)
	}
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cannot read "+*file)
		}
		defer f.Close()
		upload.FileName = filepath.Base(*file)
		upload.Image = f
	}
	if err := a.Admin.CreateProduct(ctx, upload); err != nil {
		return err
	}
	fmt.Fprintln(out, "Product added!")
	return nil
}
