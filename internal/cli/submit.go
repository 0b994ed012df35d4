package cli

import (
	"errors"
	"fmt"

	"github.com/nikolayk812/orderpipe/internal/client"
	"github.com/nikolayk812/orderpipe/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type submitFlags struct {
	server    string
	productID string
	name      string
	price     string
	salePrice string
	quantity  int
	contact   domain.ContactInfo
	shipping  domain.ShippingInfo
}

func newSubmitCmd(deps Deps) *cobra.Command {
	var f submitFlags

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one order and cache the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := f.form()
			if err != nil {
				return err
			}

			if errs := form.Validate(); len(errs) > 0 {
				return errors.Join(lo.Map(errs, func(e domain.ValidationError, _ int) error {
					return fmt.Errorf("%s: %s", e.Field, e.Message)
				})...)
			}

			c, err := client.NewOrderClient(f.server, deps.cache(), client.WithLogger(deps.Log))
			if err != nil {
				return fmt.Errorf("client.NewOrderClient: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), c.Summary(form))

			order, err := c.Submit(cmd.Context(), form)
			if err != nil {
				var vErr *domain.ValidationError
				var rErr *client.RejectedError
				switch {
				case errors.As(err, &vErr):
					return fmt.Errorf("%s: %s", vErr.Field, vErr.Message)
				case errors.As(err, &rErr):
					return errors.New(rErr.Message)
				case errors.Is(err, client.ErrNetwork):
					return client.ErrNetwork
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "order %s is %s\n", order.ID, order.Status)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.server, "server", "http://localhost:8080", "order service base URL")
	flags.StringVar(&f.productID, "product-id", "", "product id")
	flags.StringVar(&f.name, "product-name", "", "product name")
	flags.StringVar(&f.price, "price", "", "product price")
	flags.StringVar(&f.salePrice, "sale-price", "", "sale price, overrides price when set")
	flags.IntVar(&f.quantity, "quantity", 1, "quantity")
	flags.StringVar(&f.contact.Name, "name", "", "contact name")
	flags.StringVar(&f.contact.Phone, "phone", "", "contact phone")
	flags.StringVar(&f.contact.Email, "email", "", "contact email")
	flags.StringVar(&f.shipping.ReceiverName, "receiver-name", "", "receiver name")
	flags.StringVar(&f.shipping.ReceiverPhone, "receiver-phone", "", "receiver phone")
	flags.StringVar(&f.shipping.Address1, "address1", "", "address")
	flags.StringVar(&f.shipping.Address2, "address2", "", "detailed address")

	return cmd
}

func (f submitFlags) form() (client.Form, error) {
	var form client.Form

	price, err := decimal.NewFromString(f.price)
	if err != nil {
		return form, fmt.Errorf("price[%s] is not valid: %w", f.price, err)
	}

	product := domain.Product{ID: f.productID, Name: f.name, Price: price}

	if f.salePrice != "" {
		sale, err := decimal.NewFromString(f.salePrice)
		if err != nil {
			return form, fmt.Errorf("sale-price[%s] is not valid: %w", f.salePrice, err)
		}
		product.SalePrice = &sale
	}

	return client.Form{
		Product:  product,
		Quantity: f.quantity,
		Contact:  f.contact,
		Shipping: f.shipping,
	}, nil
}
