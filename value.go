// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package voltgraph é o cliente Go para o protocolo de consulta a
// grafos: abre uma conexão TCP/TLS autenticada por confiança no
// primeiro uso, executa um statement e entrega os resultados por um
// stream com back-pressure.
package voltgraph

import "github.com/voltgraph/voltgraph-go/graphvalue"

// Value, Kind e as formas de entidade de grafo são reexportadas de
// graphvalue por alias de tipo: é o mesmo tipo, apenas acessível sob o
// pacote raiz para que o chamador não precise importar um pacote
// interno.
type (
	Value        = graphvalue.Value
	Kind         = graphvalue.Kind
	Node         = graphvalue.Node
	Relationship = graphvalue.Relationship
	Path         = graphvalue.Path
)

const (
	KindNull         = graphvalue.KindNull
	KindBool         = graphvalue.KindBool
	KindInt64        = graphvalue.KindInt64
	KindFloat64      = graphvalue.KindFloat64
	KindString       = graphvalue.KindString
	KindBytes        = graphvalue.KindBytes
	KindList         = graphvalue.KindList
	KindMap          = graphvalue.KindMap
	KindNode         = graphvalue.KindNode
	KindRelationship = graphvalue.KindRelationship
	KindPath         = graphvalue.KindPath
)

var (
	NullValue    = graphvalue.Null
	BoolValue    = graphvalue.Bool
	Int64Value   = graphvalue.Int64
	Float64Value = graphvalue.Float64
	StringValue  = graphvalue.String
	BytesValue   = graphvalue.Bytes
	ListValue    = graphvalue.List
	MapValue     = graphvalue.Map
	NodeVal      = graphvalue.NodeValue
	RelVal       = graphvalue.RelationshipValue
	PathVal      = graphvalue.PathValue
)
