// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package expr implements the
// AST representation of q parse trees
// as printed by the engine's var2string.
//
// Each of the AST node types satisfies
// the Node interface. The set of node
// types is closed: Node has unexported
// methods, so only this package can
// add new variants.
//
// The critical entry points for this
// package are Walk, Rewrite, ToString,
// and Encode/Decode. ToString produces
// the nested-call rendering of a tree;
// see package flatten for the
// statement-per-call rendering.
package expr
