package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/objreg/core/constructor"
	"github.com/kilianp07/objreg/core/registry"
)

type keyOptions struct {
	typeID string
	kind   string
	args   string
	alias  string
}

func newKeyCmd() *cobra.Command {
	o := &keyOptions{}
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the canonical string and digest of a registry key",
		Example: `  objreg key --type app.Widget --kind obtain --args '[42,"x"]'
  objreg key --type app.Widget --alias primary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			canonical, k, err := o.derive()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", canonical, k)
			return err
		},
	}
	cmd.Flags().StringVarP(&o.typeID, "type", "t", "", "type identifier")
	cmd.Flags().StringVarP(&o.kind, "kind", "k", string(registry.KindObtain), "construction kind: new or obtain")
	cmd.Flags().StringVarP(&o.args, "args", "a", "[]", "construction arguments as a JSON array")
	cmd.Flags().StringVar(&o.alias, "alias", "", "alias name; derives an alias key instead")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// derive normalizes the type id the way the runtime catalog does before
// building the key.
func (o *keyOptions) derive() (string, registry.Key, error) {
	id := constructor.NewCatalog().ResolveTypeID(o.typeID)
	if o.alias != "" {
		return registry.AliasString(id, o.alias), registry.AliasKey(id, o.alias), nil
	}
	kind := registry.Kind(o.kind)
	if kind != registry.KindNew && kind != registry.KindObtain {
		return "", registry.Key{}, fmt.Errorf("unknown kind %q", o.kind)
	}
	var args []any
	if err := json.Unmarshal([]byte(o.args), &args); err != nil {
		return "", registry.Key{}, fmt.Errorf("parse args: %w", err)
	}
	canonical, err := registry.ConstructionString(kind, id, args)
	if err != nil {
		return "", registry.Key{}, err
	}
	k, err := registry.ConstructionKey(kind, id, args)
	if err != nil {
		return "", registry.Key{}, err
	}
	return canonical, k, nil
}
