package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bitswalk/bazaar/src/bazaarctl/internal/client"
	"github.com/bitswalk/bazaar/src/bazaarctl/internal/output"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"categories", "cat"},
	Short:   "Browse categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active categories",
	Args:  cobra.NoArgs,
	RunE:  runCategoryList,
}

var productCmd = &cobra.Command{
	Use:     "product",
	Aliases: []string{"products", "prod"},
	Short:   "Browse products",
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active products",
	Args:  cobra.NoArgs,
	RunE:  runProductList,
}

func init() {
	categoryCmd.AddCommand(categoryListCmd)

	productListCmd.Flags().Int("page", 1, "Page number")
	productListCmd.Flags().Int("page-size", 20, "Products per page (1-100)")
	productListCmd.Flags().Int64("category", 0, "Only products of this category ID")
	productListCmd.Flags().Int64("seller", 0, "Only products of this seller ID")
	productListCmd.Flags().String("search", "", "Search in name and description")
	productListCmd.Flags().Float64("min-price", 0, "Minimum price")
	productListCmd.Flags().Float64("max-price", 0, "Maximum price")
	productListCmd.Flags().Bool("in-stock", false, "Only products in stock")
	productCmd.AddCommand(productListCmd)
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	categories, err := getClient().ListCategories(context.Background())
	if err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), categories, func() error {
		if len(categories) == 0 {
			output.PrintMessage("No categories found.")
			return nil
		}
		table := make([][]string, 0, len(categories))
		for _, c := range categories {
			parent := "-"
			if c.ParentID != nil {
				parent = strconv.FormatInt(*c.ParentID, 10)
			}
			table = append(table, []string{strconv.FormatInt(c.ID, 10), c.Name, parent})
		}
		output.PrintTable([]string{"ID", "NAME", "PARENT"}, table)
		return nil
	})
}

// productListOptions reads the product list flags of cmd
func productListOptions(cmd *cobra.Command) *client.ProductListOptions {
	opts := &client.ProductListOptions{}
	opts.Page, _ = cmd.Flags().GetInt("page")
	opts.PageSize, _ = cmd.Flags().GetInt("page-size")
	opts.CategoryID, _ = cmd.Flags().GetInt64("category")
	opts.SellerID, _ = cmd.Flags().GetInt64("seller")
	opts.Search, _ = cmd.Flags().GetString("search")
	opts.InStock, _ = cmd.Flags().GetBool("in-stock")
	if cmd.Flags().Changed("min-price") {
		v, _ := cmd.Flags().GetFloat64("min-price")
		opts.MinPrice = &v
	}
	if cmd.Flags().Changed("max-price") {
		v, _ := cmd.Flags().GetFloat64("max-price")
		opts.MaxPrice = &v
	}
	return opts
}

func runProductList(cmd *cobra.Command, args []string) error {
	resp, err := getClient().ListProducts(context.Background(), productListOptions(cmd))
	if err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), resp, func() error {
		if len(resp.Items) == 0 {
			output.PrintMessage("No products found.")
			return nil
		}
		rows := make([][]string, 0, len(resp.Items))
		for _, p := range resp.Items {
			rows = append(rows, []string{
				strconv.FormatInt(p.ID, 10),
				p.Name,
				strconv.FormatFloat(p.Price, 'f', 2, 64),
				strconv.Itoa(p.Stock),
				strconv.FormatFloat(p.Rating, 'f', 1, 64),
				strconv.FormatInt(p.CategoryID, 10),
			})
		}
		output.PrintTable([]string{"ID", "NAME", "PRICE", "STOCK", "RATING", "CATEGORY"}, rows)
		output.PrintMessage(fmt.Sprintf("\nPage %d, %d of %d products", resp.Page, len(resp.Items), resp.Total))
		return nil
	})
}
