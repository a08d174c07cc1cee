// Package pricing считает себестоимость, рекомендованную цену и прибыль по
// позициям заказа. Округления внутри расчёта нет: два знака после запятой
// появляются только при выводе через Money.
package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// Rate — себестоимость и цена за единицу площади.
type Rate struct {
	UnitCost  float64
	UnitPrice float64
}

// Item — позиция заказа, введённая пользователем.
type Item struct {
	Service    string  `json:"service" validate:"required"`
	Height     float64 `json:"height" validate:"gt=0"`
	Width      float64 `json:"width" validate:"gt=0"`
	Quantity   float64 `json:"quantity" validate:"gt=0"`
	Multiplier float64 `json:"multiplier" validate:"gt=0"`
}

// Line — результат расчёта одной позиции.
type Line struct {
	Item           Item    `json:"item"`
	Area           float64 `json:"area"`
	Cost           float64 `json:"cost"`
	SuggestedPrice float64 `json:"suggestedPrice"`
	Profit         float64 `json:"profit"`
}

// Totals — суммы по всем позициям.
type Totals struct {
	Area           float64 `json:"area"`
	Cost           float64 `json:"cost"`
	SuggestedPrice float64 `json:"suggestedPrice"`
	Profit         float64 `json:"profit"`
}

// Quote считает одну позицию:
//
//	area = height * width * quantity
//	cost = unitCost * area
//	suggestedPrice = unitPrice * area * multiplier
//	profit = suggestedPrice - cost
func Quote(rate Rate, item Item) Line {
	area := item.Height * item.Width * item.Quantity
	cost := rate.UnitCost * area
	suggested := rate.UnitPrice * area * item.Multiplier
	return Line{
		Item:           item,
		Area:           area,
		Cost:           cost,
		SuggestedPrice: suggested,
		Profit:         suggested - cost,
	}
}

// Summarize суммирует позиции.
func Summarize(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Area += l.Area
		t.Cost += l.Cost
		t.SuggestedPrice += l.SuggestedPrice
		t.Profit += l.Profit
	}
	return t
}

// Money форматирует сумму с двумя знаками после запятой.
func Money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RateFromPrice разбирает строковые колонки прайса. Допускаются символ валюты и
// запятая в качестве десятичного разделителя.
func RateFromPrice(p models.ServicePrice) (Rate, error) {
	cost, err := parseAmount(p.UnitCost)
	if err != nil {
		return Rate{}, fmt.Errorf("pricing: service %q unit cost: %w", p.Service, err)
	}
	price, err := parseAmount(p.UnitPrice)
	if err != nil {
		return Rate{}, fmt.Errorf("pricing: service %q unit price: %w", p.Service, err)
	}
	return Rate{UnitCost: cost, UnitPrice: price}, nil
}

// parseAmount разбирает сумму из ячейки таблицы: "$1,250.00", "1.250,00", "0,25".
// Из двух разных разделителей десятичным считается последний. Одиночная запятая
// с одной-двумя цифрами после неё десятичная, иначе запятые и повторные точки
// разделяют тысячи.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if tail := len(s) - comma - 1; strings.Count(s, ",") == 1 && tail >= 1 && tail <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return strconv.ParseFloat(s, 64)
}

// Catalog — прайс, проиндексированный по названию услуги без учёта регистра.
type Catalog map[string]Rate

// NewCatalog строит каталог из строк прайса.
func NewCatalog(prices []models.ServicePrice) (Catalog, error) {
	c := make(Catalog, len(prices))
	for _, p := range prices {
		r, err := RateFromPrice(p)
		if err != nil {
			return nil, err
		}
		c[normalize(p.Service)] = r
	}
	return c, nil
}

// Lookup возвращает тариф услуги.
func (c Catalog) Lookup(service string) (Rate, bool) {
	r, ok := c[normalize(service)]
	return r, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
