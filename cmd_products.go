package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/config"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

var productsFlags struct {
	userID string
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage products",
}

var productsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import products and their sales knowledge from YAML",
	Long:  "Imports one product, or a list of products, from a YAML file.\nProducts without a user_id are assigned to --user.",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductsImport,
}

func init() {
	productsImportCmd.Flags().StringVar(&productsFlags.userID, "user", "", "Owner for products that name none")
	productsCmd.AddCommand(productsImportCmd)
}

func runProductsImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	products, err := parseProducts(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	ctx := context.Background()
	a, err := newApp(ctx, config.Load())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	for _, product := range products {
		if product.UserID == "" {
			product.UserID = productsFlags.userID
		}
		if err := a.service.ImportProduct(ctx, product); err != nil {
			return fmt.Errorf("import %q: %w", product.Name, err)
		}
		fmt.Fprintf(out, "%s\t%s\n", product.ProductID, product.Name)
	}
	return nil
}

// parseProducts accepts a single product document or a sequence of them.
func parseProducts(data []byte) ([]*domain.Product, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}

	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var products []*domain.Product
		if err := root.Decode(&products); err != nil {
			return nil, err
		}
		return products, nil
	}

	var product domain.Product
	if err := root.Decode(&product); err != nil {
		return nil, err
	}
	return []*domain.Product{&product}, nil
}
