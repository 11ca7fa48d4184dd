// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package voltgraph

import "github.com/voltgraph/voltgraph-go/internal/resultstream"

// Record é uma linha de resultado com campos posicionais. Seus valores
// só são válidos até a próxima chamada a Result.Next, a menos que o
// chamador chame Retain antes de avançar.
type Record = resultstream.Record
