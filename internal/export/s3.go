// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package export envia o resultado de um statement já coletado para um
// bucket S3, um JSON object por linha. É a contraparte de descarte de
// um resultado grande: em vez de o chamador reter tudo em memória para
// imprimir, ele sobe o corpo diretamente pelo upload manager, que lida
// com multipart quando o corpo ultrapassa o limite de uma única
// requisição PUT.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/voltgraph/voltgraph-go/graphvalue"
)

// RecordSource fornece os valores de um record para a exportação, sem
// acoplar este pacote ao tipo concreto de Record do cliente.
type RecordSource interface {
	NFields() int
	Field(i int) graphvalue.Value
}

// Uploader envia coleções de records para um bucket S3, um objeto JSON
// por linha.
type Uploader struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// NewUploader carrega a configuração padrão da AWS (variáveis de
// ambiente, arquivo de credenciais, papel de instância) e constrói um
// Uploader pronto para uso.
func NewUploader(ctx context.Context, region string) (*Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &Uploader{client: client, uploader: manager.NewUploader(client)}, nil
}

// fieldNames nomeia cada posição como "fieldN" — este pacote não tem
// acesso aos nomes de campo do cabeçalho do statement, apenas aos
// valores; um chamador que queira nomes reais deve montar o JSON ele
// mesmo e usar UploadReader diretamente.
func fieldNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("field%d", i)
	}
	return names
}

// UploadRecords serializa records como JSON Lines e os envia para
// bucket/key.
func (u *Uploader) UploadRecords(ctx context.Context, bucket, key string, records []RecordSource) error {
	pr, pw := io.Pipe()

	go func() {
		enc := json.NewEncoder(pw)
		for idx, rec := range records {
			row := make(map[string]any, rec.NFields())
			names := fieldNames(rec.NFields())
			for i, name := range names {
				row[name] = jsonValue(rec.Field(i))
			}
			if err := enc.Encode(row); err != nil {
				pw.CloseWithError(fmt.Errorf("encoding record %d: %w", idx, err))
				return
			}
		}
		pw.Close()
	}()

	return u.UploadReader(ctx, bucket, key, pr)
}

// UploadReader envia o conteúdo de r diretamente, sem interpretar seu
// formato — usado quando o chamador já serializou os records do jeito
// que quiser.
func (u *Uploader) UploadReader(ctx context.Context, bucket, key string, r io.Reader) error {
	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// jsonValue converte um graphvalue.Value num valor codificável em
// JSON. Nós, relacionamentos e caminhos viram mapas aninhados; listas e
// mapas são convertidos recursivamente.
func jsonValue(v graphvalue.Value) any {
	switch v.Kind {
	case graphvalue.KindNull:
		return nil
	case graphvalue.KindBool:
		b, _ := v.AsBool()
		return b
	case graphvalue.KindInt64:
		i, _ := v.AsInt64()
		return i
	case graphvalue.KindFloat64:
		f, _ := v.AsFloat64()
		return f
	case graphvalue.KindString:
		s, _ := v.AsString()
		return s
	case graphvalue.KindBytes:
		b, _ := v.AsBytes()
		return b
	case graphvalue.KindList:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = jsonValue(it)
		}
		return out
	case graphvalue.KindMap:
		m, _ := v.AsMap()
		return jsonMap(m)
	case graphvalue.KindNode:
		n, _ := v.AsNode()
		return map[string]any{
			"elementId": n.ElementID,
			"labels":    n.Labels,
			"props":     jsonMap(n.Props),
		}
	case graphvalue.KindRelationship:
		r, _ := v.AsRelationship()
		return map[string]any{
			"elementId":      r.ElementID,
			"startElementId": r.StartElementID,
			"endElementId":   r.EndElementID,
			"type":           r.Type,
			"props":          jsonMap(r.Props),
		}
	case graphvalue.KindPath:
		p, _ := v.AsPath()
		nodes := make([]any, len(p.Nodes))
		for i, n := range p.Nodes {
			nodes[i] = jsonValue(graphvalue.NodeValue(n))
		}
		rels := make([]any, len(p.Rels))
		for i, r := range p.Rels {
			rels[i] = jsonValue(graphvalue.RelationshipValue(r))
		}
		return map[string]any{"nodes": nodes, "rels": rels}
	default:
		return nil
	}
}

func jsonMap(m map[string]graphvalue.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = jsonValue(v)
	}
	return out
}
