// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package hierarchy

import (
	"github.com/kraklabs/rpgraph/pkg/rpg"
	"github.com/kraklabs/rpgraph/pkg/semantic"
)

// BuildGraph materializes Area/category/subcategory high-level nodes and
// functional edges for every assignment, wiring each group's files
// beneath its subcategory (§4.7 "Graph construction").
func BuildGraph(graph *rpg.Graph, assignments []Assignment, groups map[string][]string) error {
	created := make(map[string]bool)

	ensure := func(area, category, subcategory string) (string, error) {
		id := rpg.HighLevelNodeID(area, category, subcategory)
		if created[id] || graph.HasNode(id) {
			created[id] = true
			return id, nil
		}
		desc, _ := semantic.ValidateFeatureName(describeLeaf(area, category, subcategory))
		if err := graph.AddHighLevelNode(rpg.Node{ID: id, Feature: rpg.SemanticFeature{Description: desc}}); err != nil {
			return "", err
		}
		created[id] = true
		return id, nil
	}

	for _, a := range assignments {
		areaID, err := ensure(a.Area, "", "")
		if err != nil {
			return err
		}
		catID, err := ensure(a.Area, a.Category, "")
		if err != nil {
			return err
		}
		subID, err := ensure(a.Area, a.Category, a.Subcategory)
		if err != nil {
			return err
		}
		if err := graph.AddFunctionalEdge(areaID, catID); err != nil {
			return err
		}
		if err := graph.AddFunctionalEdge(catID, subID); err != nil {
			return err
		}
		for _, fileID := range groups[a.GroupLabel] {
			if !graph.HasNode(fileID) {
				continue
			}
			if err := graph.AddFunctionalEdge(subID, fileID); err != nil {
				return err
			}
		}
	}
	return nil
}

func describeLeaf(area, category, subcategory string) string {
	switch {
	case subcategory != "":
		return subcategory
	case category != "":
		return category
	default:
		return area
	}
}
