package dialect

import (
	"fmt"
)

// DefaultLiteralCeiling - потолок количества литералов для нативного
// рендеринга set-membership. Выше потолка используется literal-list
// fallback, чтобы не упираться в лимиты длины запроса.
const DefaultLiteralCeiling = 1000

// Builder выбирает стратегию рендеринга по CapabilitySet цели,
// никогда по runtime-интроспекции строки запроса.
// Добавление нового бэкенда не меняет call-sites: достаточно нового
// CapabilitySet и Renderer.
type Builder struct {
	caps           CapabilitySet
	renderer       Renderer
	literalCeiling int
}

// NewBuilder создает Builder для целевого диалекта
func NewBuilder(caps CapabilitySet, renderer Renderer) *Builder {
	return &Builder{
		caps:           caps,
		renderer:       renderer,
		literalCeiling: DefaultLiteralCeiling,
	}
}

// SetLiteralCeiling настраивает потолок литералов для нативного рендеринга
func (b *Builder) SetLiteralCeiling(n int) {
	if n > 0 {
		b.literalCeiling = n
	}
}

// Capabilities возвращает набор возможностей целевого диалекта
func (b *Builder) Capabilities() CapabilitySet {
	return b.caps
}

// Render рендерит intent в самодостаточный SQL-фрагмент,
// пригодный для позиции предиката объемлющего запроса.
func (b *Builder) Render(intent Intent) (string, error) {
	switch it := intent.(type) {
	case SetMembershipFilter:
		return b.renderSetMembership(it)
	case StructuredFieldQuery:
		return b.renderer.StructuredField(it.Column, it.Path), nil
	case BooleanPredicate:
		return b.renderer.BooleanPredicate(it.Column), nil
	case ArrayContains:
		return b.renderer.ArrayContains(it.Column, it.Value)
	default:
		return "", fmt.Errorf("unknown query intent: %s", intent.intentName())
	}
}

// renderSetMembership рендерит фильтр "колонка IN множество".
// Tie-break: предпочитаем нативный конструктор коллекции;
// fallback на список литералов когда возможности нет или
// количество значений превышает потолок.
func (b *Builder) renderSetMembership(it SetMembershipFilter) (string, error) {
	column := b.renderer.QuoteIdentifier(it.Column)

	if len(it.Values) == 0 {
		return fmt.Sprintf("%s IN %s", column, b.renderer.EmptySet()), nil
	}

	var source string
	var err error
	if b.caps.NativeArrays && len(it.Values) <= b.literalCeiling {
		source, err = b.renderer.ArrayConstructor(it.Values)
	} else {
		source, err = b.renderer.LiteralList(it.Values)
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s IN %s", column, source), nil
}
