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

package callgraph

// commonMethodBlocklist is the fixed set of method names too generic to
// fuzzy-resolve safely (§4.2 step 4).
var commonMethodBlocklist = map[string]bool{
	"get": true, "set": true, "add": true, "remove": true, "update": true,
	"init": true, "close": true, "run": true, "start": true, "stop": true,
	"new": true, "create": true, "delete": true, "build": true, "execute": true,
}

// ClassIndex is the symbol table a TypeInferrer consults: class name ->
// its file, and class name -> declared parents (for MRO walking), plus
// a method-name -> declaring-classes index for the fuzzy fallback.
type ClassIndex struct {
	ParentsOf    map[string][]string // class -> direct parents, in declared order
	MethodOwners map[string][]string // method name -> classes that define it

	// ConstructorAssignments maps "callerFile:funcName:varName" to the
	// class name assigned via `varName := Foo{}` / `x = Foo()`.
	ConstructorAssignments map[string]string
	// InstanceAttributes maps "callerFile:className:attrName" to the
	// class name assigned via `self.x = Foo()` / `this.x = new Bar()`.
	InstanceAttributes map[string]string
}

// NewClassIndex returns an empty, ready-to-populate ClassIndex.
func NewClassIndex() *ClassIndex {
	return &ClassIndex{
		ParentsOf:              make(map[string][]string),
		MethodOwners:           make(map[string][]string),
		ConstructorAssignments: make(map[string]string),
		InstanceAttributes:     make(map[string]string),
	}
}

// AddInheritance registers a parent edge discovered by ExtractInheritance.
func (ix *ClassIndex) AddInheritance(rel InheritanceRelation) {
	ix.ParentsOf[rel.ChildClass] = append(ix.ParentsOf[rel.ChildClass], rel.ParentClass)
}

// AddMethod registers that class defines methodName.
func (ix *ClassIndex) AddMethod(class, methodName string) {
	ix.MethodOwners[methodName] = append(ix.MethodOwners[methodName], class)
}

// TypeInferrer resolves a CallSite's variable receiver to a qualified
// "ClassName.method" using the resolution order of §4.2.
type TypeInferrer struct {
	index *ClassIndex
}

// NewTypeInferrer builds an inferrer over the given class index.
func NewTypeInferrer(index *ClassIndex) *TypeInferrer {
	return &TypeInferrer{index: index}
}

// Resolve attempts to qualify call against callerClass (the class
// enclosing the call, empty if module scope) and callerFile/callerFunc
// (used to look up constructor assignments). Returns ("", false) when
// no resolution strategy succeeds.
func (ti *TypeInferrer) Resolve(call CallSite, callerFile, callerClass, callerFunc string) (string, bool) {
	switch call.ReceiverKind {
	case ReceiverSelf:
		if callerClass == "" {
			return "", false
		}
		return ti.walkMRO(callerClass, 0, call.CalleeSymbol)
	case ReceiverSuper:
		if callerClass == "" {
			return "", false
		}
		return ti.walkMRO(callerClass, 1, call.CalleeSymbol)
	case ReceiverVariable:
		if class, ok := ti.index.ConstructorAssignments[callerFile+":"+callerFunc+":"+call.Receiver]; ok {
			if q, ok := ti.walkMRO(class, 0, call.CalleeSymbol); ok {
				return q, true
			}
		}
		if class, ok := ti.index.InstanceAttributes[callerFile+":"+callerClass+":"+call.Receiver]; ok {
			if q, ok := ti.walkMRO(class, 0, call.CalleeSymbol); ok {
				return q, true
			}
		}
		return ti.fuzzyResolve(call.CalleeSymbol)
	default:
		return "", false
	}
}

// walkMRO does a cycle-safe DFS over class's ancestor chain starting at
// mroIndex (0 = class itself, 1 = first parent, matching `super`'s
// start), returning the first class found to define methodName.
func (ti *TypeInferrer) walkMRO(class string, mroIndex int, methodName string) (string, bool) {
	chain := ti.linearize(class, make(map[string]bool))
	if mroIndex >= len(chain) {
		return "", false
	}
	for _, c := range chain[mroIndex:] {
		for _, owner := range ti.index.MethodOwners[methodName] {
			if owner == c {
				return c + "." + methodName, true
			}
		}
	}
	return "", false
}

// linearize performs a cycle-safe DFS over the inheritance graph,
// producing [class, parent1, parent1's parents..., parent2, ...].
func (ti *TypeInferrer) linearize(class string, visited map[string]bool) []string {
	if visited[class] {
		return nil
	}
	visited[class] = true
	chain := []string{class}
	for _, p := range ti.index.ParentsOf[class] {
		chain = append(chain, ti.linearize(p, visited)...)
	}
	return chain
}

// fuzzyResolve accepts a method name only when exactly one class defines
// it and the name is not on the common-method blocklist (§4.2 step 4).
func (ti *TypeInferrer) fuzzyResolve(methodName string) (string, bool) {
	if commonMethodBlocklist[methodName] {
		return "", false
	}
	owners := ti.index.MethodOwners[methodName]
	if len(owners) != 1 {
		return "", false
	}
	return owners[0] + "." + methodName, true
}
