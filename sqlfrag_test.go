// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlfrag_test

import (
	"errors"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlfrag"
)

type FragmentSuite struct{}

var _ = Suite(&FragmentSuite{})

// ordersQuery assembles a filtered query the way an application would,
// growing a condition list and joining it with AND.
func ordersQuery(filter map[string]any) *sqlfrag.Fragment {
	where := []*sqlfrag.Fragment{sqlfrag.MustSQL("TRUE")}
	if v, ok := filter["id"]; ok {
		where = append(where, sqlfrag.MustSQL("id = {}", v))
	}
	if v, ok := filter["eventId"]; ok {
		where = append(where, sqlfrag.MustSQL("event_id = {}", v))
	}
	if v, ok := filter["from"]; ok {
		where = append(where, sqlfrag.MustSQL("start_time >= {}", v))
	}
	if v, ok := filter["until"]; ok {
		where = append(where, sqlfrag.MustSQL("start_time < {}", v))
	}
	return sqlfrag.MustSQL("SELECT * FROM orders WHERE {}", sqlfrag.MustSQL(" AND ").Join(where...))
}

func (s *FragmentSuite) TestComposedQuery(c *C) {
	text, args, err := ordersQuery(nil).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "SELECT * FROM orders WHERE TRUE")
	c.Assert(args, DeepEquals, []any{})

	text, args, err = ordersQuery(map[string]any{"id": "xyzzy"}).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "SELECT * FROM orders WHERE TRUE AND id = $1")
	c.Assert(args, DeepEquals, []any{"xyzzy"})

	text, args, err = ordersQuery(map[string]any{
		"eventId": "plugh",
		"from":    "2019-05-01",
		"until":   "2019-08-26",
	}).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "SELECT * FROM orders WHERE TRUE AND event_id = $1 AND start_time >= $2 AND start_time < $3")
	c.Assert(args, DeepEquals, []any{"plugh", "2019-05-01", "2019-08-26"})
}

func (s *FragmentSuite) TestSpliceRenumbering(c *C) {
	frag, err := sqlfrag.SQL("A {x} B", sqlfrag.M{"x": sqlfrag.MustSQL("C {} D", 5)})
	c.Assert(err, IsNil)
	text, args, err := frag.Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "A C $1 D B")
	c.Assert(args, DeepEquals, []any{5})
}

func (s *FragmentSuite) TestNestedSubquery(c *C) {
	frag := sqlfrag.MustSQL(
		"SELECT * FROM ({subquery}) sq WHERE sq.foo = {foo} LIMIT {limit}",
		sqlfrag.M{
			"subquery": ordersQuery(map[string]any{"id": "xyzzy"}),
			"foo":      "bork",
			"limit":    50,
		},
	)
	text, args, err := frag.Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "SELECT * FROM (SELECT * FROM orders WHERE TRUE AND id = $1) sq WHERE sq.foo = $2 LIMIT $3")
	c.Assert(args, DeepEquals, []any{"xyzzy", "bork", 50})
}

func (s *FragmentSuite) TestRepeatedNamedMarker(c *C) {
	frag := sqlfrag.MustSQL("SELECT {a}, {b}, {a}", sqlfrag.M{"a": "a", "b": "b"})
	text, args, err := frag.Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "SELECT $1, $2, $1")
	c.Assert(args, DeepEquals, []any{"a", "b"})
}

func (s *FragmentSuite) TestRepeatedSplicedFragment(c *C) {
	sub := ordersQuery(map[string]any{"id": "a"})
	frag := sqlfrag.MustSQL(
		"SELECT a.*, b.* FROM ({sqa}) a, ({sqb}) b",
		sqlfrag.M{"sqa": sub, "sqb": sub},
	)
	text, args, err := frag.Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "SELECT a.*, b.* FROM (SELECT * FROM orders WHERE TRUE AND id = $1) a, (SELECT * FROM orders WHERE TRUE AND id = $1) b")
	c.Assert(args, DeepEquals, []any{"a"})

	// Distinct fragments bind distinct values even when they are equal.
	frag = sqlfrag.MustSQL(
		"SELECT a.*, b.* FROM ({sqa}) a, ({sqb}) b",
		sqlfrag.M{
			"sqa": ordersQuery(map[string]any{"id": "a"}),
			"sqb": ordersQuery(map[string]any{"id": "b"}),
		},
	)
	text, args, err = frag.Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "SELECT a.*, b.* FROM (SELECT * FROM orders WHERE TRUE AND id = $1) a, (SELECT * FROM orders WHERE TRUE AND id = $2) b")
	c.Assert(args, DeepEquals, []any{"a", "b"})
}

func (s *FragmentSuite) TestPositionalOrderPreserved(c *C) {
	frag := sqlfrag.MustSQL("a = {} AND b = {n} AND c = {}", 1, 2, sqlfrag.M{"n": 9})
	text, args, err := frag.Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "a = $1 AND b = $2 AND c = $3")
	c.Assert(args, DeepEquals, []any{1, 9, 2})
}

func (s *FragmentSuite) TestRenderIsRepeatable(c *C) {
	frag := sqlfrag.MustSQL("a = {} AND b = {}", 1, "two")
	text1, args1, err := frag.Query()
	c.Assert(err, IsNil)
	text2, args2, err := frag.Query()
	c.Assert(err, IsNil)
	c.Assert(text2, Equals, text1)
	c.Assert(args2, DeepEquals, args1)
}

func (s *FragmentSuite) TestEscapedBraces(c *C) {
	frag := sqlfrag.MustSQL("SELECT '{{\"k\": {}}}'::jsonb", 1)
	text, args, err := frag.Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, `SELECT '{"k": $1}'::jsonb`)
	c.Assert(args, DeepEquals, []any{1})
}

func (s *FragmentSuite) TestFlat(c *C) {
	flat, err := ordersQuery(map[string]any{"id": "xyzzy"}).Flat()
	c.Assert(err, IsNil)
	c.Assert(flat, DeepEquals, []any{"SELECT * FROM orders WHERE TRUE AND id = $1", "xyzzy"})

	flat, err = ordersQuery(nil).Flat()
	c.Assert(err, IsNil)
	c.Assert(flat, DeepEquals, []any{"SELECT * FROM orders WHERE TRUE"})
}

func (s *FragmentSuite) TestPositionalArity(c *C) {
	_, err := sqlfrag.SQL("a = {}")
	c.Assert(err, ErrorMatches, "wrong number of positional arguments: expected 1, got 0")
	var arityErr *sqlfrag.ArityError
	c.Assert(errors.As(err, &arityErr), Equals, true)
	c.Assert(arityErr.Want, Equals, 1)
	c.Assert(arityErr.Got, Equals, 0)

	_, err = sqlfrag.SQL("a = {}", 1, 2)
	c.Assert(err, ErrorMatches, "wrong number of positional arguments: expected 1, got 2")

	// Named arguments do not count towards positional arity.
	_, err = sqlfrag.SQL("a = {}", 1, sqlfrag.M{"n": 2})
	c.Assert(err, IsNil)
}

func (s *FragmentSuite) TestSyntaxErrorSurfaced(c *C) {
	_, err := sqlfrag.SQL("a = {1}")
	c.Assert(err, ErrorMatches, "cannot parse template: column 6: invalid marker name starting with '1'")
	var syntaxErr *sqlfrag.SyntaxError
	c.Assert(errors.As(err, &syntaxErr), Equals, true)
}

func (s *FragmentSuite) TestDuplicateNamedArgument(c *C) {
	_, err := sqlfrag.SQL("a = {n}", sqlfrag.M{"n": 1}, sqlfrag.M{"n": 2})
	c.Assert(err, ErrorMatches, `cannot build fragment: duplicate named argument "n"`)
}

func (s *FragmentSuite) TestUnfilledSlot(c *C) {
	frag := sqlfrag.MustSQL("x = {y}")
	_, _, err := frag.Query()
	c.Assert(err, ErrorMatches, `unfilled slot "y"`)
	var slotErr *sqlfrag.UnfilledSlotError
	c.Assert(errors.As(err, &slotErr), Equals, true)
	c.Assert(slotErr.Name, Equals, "y")

	text, args, err := frag.Fill(sqlfrag.M{"y": 5}).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "x = $1")
	c.Assert(args, DeepEquals, []any{5})
}

func (s *FragmentSuite) TestUnfilledSlotReportsLeftmost(c *C) {
	frag := sqlfrag.MustSQL("x = {b} AND y = {a}")
	_, _, err := frag.Query()
	c.Assert(err, ErrorMatches, `unfilled slot "b"`)
}

func (s *FragmentSuite) TestFillUnionLaw(c *C) {
	frag := sqlfrag.MustSQL("a = {x} AND b = {y}")

	sequential, args1, err := frag.Fill(sqlfrag.M{"x": 1}).Fill(sqlfrag.M{"y": 2}).Query()
	c.Assert(err, IsNil)
	union, args2, err := frag.Fill(sqlfrag.M{"x": 1, "y": 2}).Query()
	c.Assert(err, IsNil)
	c.Assert(sequential, Equals, union)
	c.Assert(args1, DeepEquals, args2)
}

func (s *FragmentSuite) TestFillIgnoresUnknownNames(c *C) {
	frag := sqlfrag.MustSQL("x = {y}")
	text, args, err := frag.Fill(sqlfrag.M{"zzz": 1, "y": 5}).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "x = $1")
	c.Assert(args, DeepEquals, []any{5})
}

func (s *FragmentSuite) TestRefillIsNoOp(c *C) {
	frag := sqlfrag.MustSQL("x = {y}").Fill(sqlfrag.M{"y": 5})
	text, args, err := frag.Fill(sqlfrag.M{"y": 6}).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "x = $1")
	c.Assert(args, DeepEquals, []any{5})
}

func (s *FragmentSuite) TestFillWithFragment(c *C) {
	frag := sqlfrag.MustSQL("SELECT * FROM t WHERE {cond}")
	cond := sqlfrag.MustSQL("id = {}", 7)
	text, args, err := frag.Fill(sqlfrag.M{"cond": cond}).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "SELECT * FROM t WHERE id = $1")
	c.Assert(args, DeepEquals, []any{7})
}

func (s *FragmentSuite) TestFillResolvesSlotsInFragmentValue(c *C) {
	frag := sqlfrag.MustSQL("SELECT * FROM t WHERE {cond}")
	cond := sqlfrag.MustSQL("y = {y}")

	// Slots inside a fragment-valued replacement resolve against the
	// same mapping, so one fill of the union matches sequential fills.
	union, unionArgs, err := frag.Fill(sqlfrag.M{"cond": cond, "y": 2}).Query()
	c.Assert(err, IsNil)
	c.Assert(union, Equals, "SELECT * FROM t WHERE y = $1")
	c.Assert(unionArgs, DeepEquals, []any{2})

	sequential, seqArgs, err := frag.Fill(sqlfrag.M{"cond": cond}).Fill(sqlfrag.M{"y": 2}).Query()
	c.Assert(err, IsNil)
	c.Assert(sequential, Equals, union)
	c.Assert(seqArgs, DeepEquals, unionArgs)
}

func (s *FragmentSuite) TestFillSharesNameAcrossFragmentValue(c *C) {
	frag := sqlfrag.MustSQL("a = {n} AND {cond}")
	text, args, err := frag.Fill(sqlfrag.M{
		"cond": sqlfrag.MustSQL("b = {n}"),
		"n":    3,
	}).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "a = $1 AND b = $1")
	c.Assert(args, DeepEquals, []any{3})
}

func (s *FragmentSuite) TestRepeatedSlotSharesValue(c *C) {
	frag := sqlfrag.MustSQL("{n} = {n}")
	text, args, err := frag.Fill(sqlfrag.M{"n": 3}).Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "$1 = $1")
	c.Assert(args, DeepEquals, []any{3})
}

func (s *FragmentSuite) TestFillDoesNotMutateSource(c *C) {
	frag := sqlfrag.MustSQL("x = {y}")
	filled := frag.Fill(sqlfrag.M{"y": 1})
	_, _, err := frag.Query()
	c.Assert(err, ErrorMatches, `unfilled slot "y"`)
	text, args, err := filled.Query()
	c.Assert(err, IsNil)
	c.Assert(text, Equals, "x = $1")
	c.Assert(args, DeepEquals, []any{1})
}

func (s *FragmentSuite) TestString(c *C) {
	frag := sqlfrag.MustSQL("id = {} AND name = {name}", 5)
	c.Assert(frag.String(), Equals, "[Literal[id = ] Placeholder[5] Literal[ AND name = ] Slot[name]]")
}

func (s *FragmentSuite) TestMustSQLPanics(c *C) {
	c.Assert(func() { sqlfrag.MustSQL("a = {}") }, PanicMatches, "wrong number of positional arguments: expected 1, got 0")
}
