package domain

import "housing_go/pkg/quant"

func pricef(f float64) quant.Price { return quant.Price(f) }
