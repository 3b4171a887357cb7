package allocation_test

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cxc/internal/allocation"
)

// ExampleAllocate spreads a 1,500.00 credit over two invoices.
func ExampleAllocate() {
	res, err := allocation.Allocate(decimal.NewFromInt(1500), []allocation.Target{
		{ID: "F-1001", Saldo: decimal.NewFromInt(1000)},
		{ID: "F-1002", Saldo: decimal.NewFromInt(500)},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, a := range res.Allocations {
		fmt.Printf("%s aplicado=%s restante=%s\n", a.ID, a.MontoAplicado.StringFixed(2), a.SaldoRestante.StringFixed(2))
	}
	fmt.Printf("total=%s\n", res.MontoAplicable.StringFixed(2))
	// Output:
	// F-1001 aplicado=1000.00 restante=0.00
	// F-1002 aplicado=500.00 restante=0.00
	// total=1500.00
}

// ExampleAllocate_noBalance shows the error for invoices without balance.
func ExampleAllocate_noBalance() {
	_, err := allocation.Allocate(decimal.NewFromInt(100), []allocation.Target{{ID: "F-1", Saldo: decimal.Zero}})
	fmt.Println(err)
	// Output:
	// allocation: Allocate: selected invoices have no outstanding balance
}
