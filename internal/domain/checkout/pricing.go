// Package checkout contiene la lógica de precios del checkout
// (servicio de dominio, sin dependencias de infraestructura).
package checkout

import "github.com/shopspring/decimal"

// Pricing reglas de cobro del checkout: IVA sobre el subtotal y envío
// gratis a partir del umbral; por debajo se cobra tarifa plana.
type Pricing struct {
	TaxRate               decimal.Decimal // ej. 0.16
	FreeShippingThreshold decimal.Decimal // ej. 500
	ShippingFlatFee       decimal.Decimal // ej. 99
}

// Amounts montos calculados para un pedido.
type Amounts struct {
	Total    decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Final    decimal.Decimal // Total + Tax + Shipping
}

// Calculate calcula impuestos, envío y total final a partir del subtotal.
// FinalAmount = TotalAmount + TaxAmount + ShippingAmount (invariante del pedido).
func (p Pricing) Calculate(subtotal decimal.Decimal) Amounts {
	tax := subtotal.Mul(p.TaxRate).Round(2)
	shipping := p.ShippingFlatFee
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return Amounts{
		Total:    subtotal,
		Tax:      tax,
		Shipping: shipping,
		Final:    subtotal.Add(tax).Add(shipping),
	}
}
